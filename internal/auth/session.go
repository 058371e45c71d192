package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	userKey     = "_auth_user_id"
	messagesKey = "_messages"
	localsKey   = "taskly.session"
)

const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

var errNoSession = errors.New("session middleware not installed")

// Message is a one-shot notice shown on the next rendered page.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type state struct {
	sess      *session.Session
	dirty     bool
	destroyed bool
}

// Sessions loads the request's session once and saves it after the handler if it changed.
// fiber's Session must not be touched after Save, so handlers only go through the helpers below.
func Sessions(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		st := &state{sess: sess}
		c.Locals(localsKey, st)

		err = c.Next()
		if st.destroyed || !st.dirty {
			return err
		}
		// The error handler runs after this returns; keep it away from the released session.
		c.Locals(localsKey, nil)
		if serr := sess.Save(); serr != nil && err == nil {
			err = fmt.Errorf("save session: %w", serr)
		}
		return err
	}
}

func current(c *fiber.Ctx) (*state, error) {
	st, ok := c.Locals(localsKey).(*state)
	if !ok || st == nil || st.destroyed {
		return nil, errNoSession
	}
	return st, nil
}

// Login rotates the session id and binds it to userID.
func Login(c *fiber.Ctx, userID int64) error {
	st, err := current(c)
	if err != nil {
		return err
	}
	if err := st.sess.Regenerate(); err != nil {
		return fmt.Errorf("regenerate session: %w", err)
	}
	st.sess.Set(userKey, userID)
	st.dirty = true
	return nil
}

func Logout(c *fiber.Ctx) error {
	st, err := current(c)
	if err != nil {
		return err
	}
	st.destroyed = true
	return st.sess.Destroy()
}

// UserID reports the user bound to the request's session, if any.
func UserID(c *fiber.Ctx) (int64, bool) {
	st, err := current(c)
	if err != nil {
		return 0, false
	}
	id, ok := st.sess.Get(userKey).(int64)
	return id, ok
}

func AddMessage(c *fiber.Ctx, level, text string) error {
	st, err := current(c)
	if err != nil {
		return err
	}
	msgs := append(decodeMessages(st.sess), Message{Level: level, Text: text})
	raw, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	st.sess.Set(messagesKey, string(raw))
	st.dirty = true
	return nil
}

// PopMessages returns and clears the pending messages.
func PopMessages(c *fiber.Ctx) []Message {
	st, err := current(c)
	if err != nil {
		return nil
	}
	msgs := decodeMessages(st.sess)
	if len(msgs) > 0 {
		st.sess.Delete(messagesKey)
		st.dirty = true
	}
	return msgs
}

func decodeMessages(sess *session.Session) []Message {
	raw, ok := sess.Get(messagesKey).(string)
	if !ok || raw == "" {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil
	}
	return msgs
}
