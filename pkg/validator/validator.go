package validator

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.@+-]+$`)

func ValidateLogin(username, password string) ValidationErrors {
	errs := make(ValidationErrors)

	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) > 150 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers and @ . + - _")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateMessage(content string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(content) == "" {
		errs.Add("content", "Message cannot be empty")
	} else if utf8.RuneCountInString(content) > 4000 {
		errs.Add("content", "Message is too long")
	}

	return errs
}

func ValidateProject(name, description string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Project name is required")
	} else if len(name) < 2 {
		errs.Add("name", "Project name must be at least 2 characters")
	} else if len(name) > 200 {
		errs.Add("name", "Project name is too long")
	}

	if len(description) > 2000 {
		errs.Add("description", "Description is too long")
	}

	return errs
}

func ValidateDocument(name, fileType, metadata string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Document name is required")
	} else if len(name) > 255 {
		errs.Add("name", "Document name is too long")
	}

	switch fileType {
	case "", "pdf", "image", "json", "text", "other":
	default:
		errs.Add("file_type", "File type must be pdf, image, json, text or other")
	}

	if metadata != "" && !json.Valid([]byte(metadata)) {
		errs.Add("metadata", "Metadata must be valid JSON")
	}

	return errs
}

func ValidateTask(title, status string) ValidationErrors {
	errs := make(ValidationErrors)

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Task title is required")
	} else if len(title) > 200 {
		errs.Add("title", "Task title is too long")
	}

	if status != "" && status != "open" && status != "in_progress" && status != "done" && status != "cancelled" {
		errs.Add("status", "Status must be open, in_progress, done, or cancelled")
	}

	return errs
}
