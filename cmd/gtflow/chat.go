package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/vedran77/gtflow/internal/domain"
	"github.com/vedran77/gtflow/internal/repository/rest"
	"github.com/vedran77/gtflow/internal/service"
	"github.com/vedran77/gtflow/internal/transport/ws"
	"github.com/vedran77/gtflow/pkg/validator"
)

// cmdChat runs the interactive chat loop. One session-wide notification
// listener stays up the whole time; opening a conversation additionally
// dials that room's channel for sends and low-latency receives.
func (a *app) cmdChat(args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	with := fs.String("with", "", "open a conversation with this username right away")
	fs.Parse(args)

	selfID, err := a.selfID()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chatRepo := rest.NewChatRepo(a.api)
	session := service.NewSession(selfID, chatRepo, chatRepo)
	defer session.Close()

	token := a.store.Access()
	session.SetDialer(ws.NewDialer(a.cfg.WSURL, token, session))

	global := ws.NewGlobalListener(a.cfg.WSURL, token, session)
	if err := global.Start(ctx); err != nil {
		return fmt.Errorf("connecting notification channel: %w", err)
	}
	defer global.Close()

	if counts, err := chatRepo.UnreadCounts(ctx); err == nil {
		session.SeedUnread(counts)
	}

	users, err := rest.NewUserRepo(a.api).List(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]domain.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}

	if *with != "" {
		if err := openByUsername(ctx, session, byName, *with); err != nil {
			return err
		}
		a.renderRoom(session)
	} else {
		fmt.Println("Commands: /open <username>  /rooms  /refresh  /quit")
		fmt.Println("Anything else is sent to the open conversation.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		renderToasts(session)
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			a.renderRoom(session)

		case line == "/quit":
			return nil

		case line == "/refresh":
			a.renderRoom(session)

		case line == "/rooms":
			a.renderRooms(ctx, chatRepo, session)

		case strings.HasPrefix(line, "/open "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "/open "))
			if err := openByUsername(ctx, session, byName, name); err != nil {
				fmt.Println(err)
				continue
			}
			a.renderRoom(session)

		case strings.HasPrefix(line, "/"):
			fmt.Printf("unknown command %s\n", line)

		default:
			if errs := validator.ValidateMessage(line); errs.HasErrors() {
				fmt.Printf("not sent: %v\n", errs)
				continue
			}
			if err := session.Send(ctx, line); err != nil {
				if errors.Is(err, service.ErrNoActiveRoom) {
					fmt.Println("no open conversation, use /open <username>")
					continue
				}
				fmt.Printf("send failed: %v\n", err)
			}
		}
	}
}

func openByUsername(ctx context.Context, session *service.Session, byName map[string]domain.User, name string) error {
	user, ok := byName[name]
	if !ok {
		return fmt.Errorf("no such user %q", name)
	}
	if _, err := session.OpenConversation(ctx, user.ID); err != nil {
		return err
	}
	fmt.Printf("-- conversation with %s --\n", name)
	return nil
}

func (a *app) renderRoom(session *service.Session) {
	roomID := session.ActiveRoom()
	if roomID == uuid.Nil {
		return
	}
	for _, msg := range session.Messages(roomID) {
		if msg.IsDeleted {
			continue
		}
		fmt.Printf("[%s] %s: %s\n",
			msg.CreatedAt.Local().Format("15:04"), msg.Sender.DisplayName(), msg.Content)
		if msg.AttachmentURL != "" {
			fmt.Printf("        attachment: %s\n", msg.AttachmentURL)
		}
	}
}

func (a *app) renderRooms(ctx context.Context, repo *rest.ChatRepo, session *service.Session) {
	rooms, err := repo.List(ctx)
	if err != nil {
		fmt.Printf("listing rooms: %v\n", err)
		return
	}
	for _, room := range rooms {
		name := room.Name
		if other, ok := room.OtherParticipant(session.SelfID()); ok && room.Type == domain.RoomTypePrivate {
			name = other.DisplayName()
		}
		unread := session.Unread(room.ID)
		marker := ""
		if unread > 0 {
			marker = fmt.Sprintf("  (%d unread)", unread)
		}
		fmt.Printf("%s%s\n", name, marker)
		if room.LastMessage != nil {
			fmt.Printf("    %s: %s\n", room.LastMessage.Sender.DisplayName(), room.LastMessage.Content)
		}
	}
}

func renderToasts(session *service.Session) {
	for _, t := range session.Toasts() {
		fmt.Printf("** %s: %s\n", t.SenderName, t.Preview)
	}
}
