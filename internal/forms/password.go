package forms

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nbutton23/zxcvbn-go"
	"github.com/nbutton23/zxcvbn-go/match"
)

const minPasswordLength = 8

// CheckPassword applies the account password policy and returns one message per broken rule.
// Strength and similarity come from zxcvbn, with the username and email as user inputs.
func CheckPassword(password, username, email string) []string {
	var msgs []string
	lower := strings.ToLower(password)
	attrs := []string{strings.ToLower(username), strings.ToLower(email), strings.ToLower(localPart(email))}

	strength := zxcvbn.PasswordStrength(password, attrs)

	if similarToAny(lower, attrs) || matchesUserInput(strength.MatchSequence) {
		msgs = append(msgs, "The password is too similar to the username.")
	}
	if len([]rune(password)) < minPasswordLength {
		msgs = append(msgs, fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
	if password != "" && (strength.Score == 0 || wholeCommonMatch(strength.MatchSequence, password)) {
		msgs = append(msgs, "This password is too common.")
	}
	if isNumeric(password) {
		msgs = append(msgs, "This password is entirely numeric.")
	}
	return msgs
}

func similarToAny(password string, attrs []string) bool {
	for _, attr := range attrs {
		if similar(password, attr) {
			return true
		}
	}
	return false
}

func similar(password, attr string) bool {
	if len(attr) < 3 || password == "" {
		return false
	}
	return strings.Contains(password, attr) || strings.Contains(attr, password)
}

// matchesUserInput reports whether zxcvbn found a user input inside the password, l33t
// spellings included.
func matchesUserInput(seq []match.Match) bool {
	for _, m := range seq {
		if len(m.Token) >= 3 && strings.Contains(strings.ToLower(m.DictionaryName), "user") {
			return true
		}
	}
	return false
}

// wholeCommonMatch is true when one common-password entry covers the whole password.
func wholeCommonMatch(seq []match.Match, password string) bool {
	for _, m := range seq {
		if m.I == 0 && m.J == len(password)-1 && strings.Contains(strings.ToLower(m.DictionaryName), "password") {
			return true
		}
	}
	return false
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
