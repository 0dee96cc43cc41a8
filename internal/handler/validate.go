package handler

// Request body validation.  The rules mirror what clients already rely on:
// short names and trivial passwords are rejected before any storage work
// happens, and every violation is reported as a field-level issue under
// data.issues rather than a bare string.

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/iliyamo/blog-api/internal/httperr"
)

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	titleRe = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)
)

// passwordSpecials is the set of punctuation a password may (and must) use.
const passwordSpecials = "@$!%*?&"

func checkName(name string, issues []httperr.Issue) []httperr.Issue {
	if len(name) < 3 {
		issues = append(issues, httperr.Issue{Field: "name", Message: "must be at least 3 characters"})
	}
	return issues
}

func checkEmail(email string, issues []httperr.Issue) []httperr.Issue {
	if !emailRe.MatchString(email) {
		issues = append(issues, httperr.Issue{Field: "email", Message: "must be a valid email address"})
	}
	return issues
}

// checkPassword enforces the password policy: 8 to 20 characters, at least
// one uppercase letter, one digit and one special character, drawn only from
// letters, digits and the passwordSpecials set.
func checkPassword(password string, issues []httperr.Issue) []httperr.Issue {
	fail := func(msg string) []httperr.Issue {
		return append(issues, httperr.Issue{Field: "password", Message: msg})
	}
	if len(password) < 8 || len(password) > 20 {
		return fail("must be 8 to 20 characters")
	}
	var upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r) && r <= unicode.MaxASCII:
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		case unicode.IsLower(r) && r <= unicode.MaxASCII:
			// allowed, contributes nothing
		default:
			return fail("contains a character outside letters, digits and " + passwordSpecials)
		}
	}
	if !upper || !digit || !special {
		return fail("must contain an uppercase letter, a digit and one of " + passwordSpecials)
	}
	return issues
}

func checkTitle(title string, issues []httperr.Issue) []httperr.Issue {
	if len(title) < 8 {
		issues = append(issues, httperr.Issue{Field: "title", Message: "must be at least 8 characters"})
	} else if len(title) > 100 {
		issues = append(issues, httperr.Issue{Field: "title", Message: "cannot exceed 100 characters"})
	} else if !titleRe.MatchString(title) {
		issues = append(issues, httperr.Issue{Field: "title", Message: "can only contain letters, numbers, and spaces"})
	}
	return issues
}

func checkContent(content string, issues []httperr.Issue) []httperr.Issue {
	if len(content) < 16 {
		issues = append(issues, httperr.Issue{Field: "content", Message: "must be at least 16 characters"})
	}
	return issues
}
