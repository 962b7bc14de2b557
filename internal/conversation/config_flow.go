package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"widt/internal/models"
	"widt/internal/store"
)

const cancelText = "Alright. We can do this later."

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// VerificationSender dispatches a verification code for the chat's
// stored email and returns the user-facing outcome message. Email
// delivery failures are logged by the implementation, never fatal.
type VerificationSender interface {
	SendCode(ctx context.Context, chatID string) (string, error)
}

// ConfigFlow walks timezone → end-of-day → email. Values are staged in
// the session draft and committed in one merge at the email step;
// cancelling at any step leaves stored metadata untouched.
type ConfigFlow struct {
	meta         *store.MetaRepository
	verification VerificationSender
}

func NewConfigFlow(meta *store.MetaRepository, verification VerificationSender) *ConfigFlow {
	return &ConfigFlow{meta: meta, verification: verification}
}

func (f *ConfigFlow) Name() string { return "config" }

func (f *ConfigFlow) Start(ctx context.Context, sess *Session, msg models.InboundMessage) (Result, error) {
	meta, err := f.meta.Get(ctx, msg.ChatID)
	if err != nil {
		return end(), err
	}

	return stay(StateConfigTimezone, Reply{
		Text: currentConfigText(meta) +
			"Specify the timezone you're in (e.g., -8, +1, +8).\n" +
			"Type 'cancel' to stop the process in any step.",
	}), nil
}

func currentConfigText(meta *models.ChatMetadata) string {
	timezone := "Empty"
	endOfDay := "Empty"
	email := "Empty"
	reminder := "Yes"
	verified := false
	if meta != nil {
		if meta.Timezone != nil {
			timezone = strconv.Itoa(*meta.Timezone)
		}
		if meta.EndOfDay != nil {
			endOfDay = strconv.Itoa(*meta.EndOfDay)
		}
		if meta.Email != "" {
			email = meta.Email
		}
		if !meta.ReminderEnabled() {
			reminder = "No"
		}
		verified = meta.EmailVerified
	}
	return fmt.Sprintf(
		"Current config:\n\nTimezone: %s\nEnd of Day: %s\nReminder: %s\nEmail: %s Verified: %t\n\n",
		timezone, endOfDay, reminder, email, verified,
	)
}

func (f *ConfigFlow) Handle(ctx context.Context, sess *Session, msg models.InboundMessage) (Result, error) {
	text := strings.TrimSpace(msg.Text)
	if strings.EqualFold(text, "cancel") {
		return end(Reply{Text: cancelText}), nil
	}

	switch sess.State {
	case StateConfigTimezone:
		return f.handleTimezone(sess, text), nil
	case StateConfigEndOfDay:
		return f.handleEndOfDay(sess, text), nil
	case StateConfigEmail:
		return f.handleEmail(ctx, sess, msg, text)
	default:
		return end(), fmt.Errorf("config flow: unexpected state %q", sess.State)
	}
}

func (f *ConfigFlow) handleTimezone(sess *Session, text string) Result {
	timezone, err := strconv.Atoi(text)
	if err != nil || timezone < -12 || timezone > 14 {
		return stay(StateConfigTimezone, Reply{
			Text: "Timezone should be in the range of [-12, +14].",
		})
	}
	sess.Draft.Timezone = models.IntPtr(timezone)
	return stay(StateConfigEndOfDay, Reply{
		Text: "Great! Now specify at which hour your day ends (0-23):\n" +
			"(We'll collect the entries and send you a summary at that time)",
	})
}

func (f *ConfigFlow) handleEndOfDay(sess *Session, text string) Result {
	endOfDay, err := strconv.Atoi(text)
	if err != nil || endOfDay < 0 || endOfDay > 23 {
		return stay(StateConfigEndOfDay, Reply{
			Text: "The end of day should be in the range of [0, 23].",
		})
	}
	sess.Draft.EndOfDay = models.IntPtr(endOfDay)
	return stay(StateConfigEmail, Reply{
		Text: "Awesome! Finally, you can leave us your email to receive a daily" +
			" summary email of your fantastic achievements. Reply" +
			" \"skip\" to skip this step (and keep your current config) or" +
			" \"none\" to erase the current config.",
	})
}

func (f *ConfigFlow) handleEmail(ctx context.Context, sess *Session, msg models.InboundMessage, text string) (Result, error) {
	meta, err := f.meta.Get(ctx, msg.ChatID)
	if err != nil {
		return end(), err
	}
	previousEmail := ""
	if meta != nil {
		previousEmail = meta.Email
	}

	switch strings.ToLower(text) {
	case "skip":
		sess.Draft.Email = &previousEmail
	case "none":
		empty := ""
		sess.Draft.Email = &empty
	default:
		if !emailPattern.MatchString(text) {
			return stay(StateConfigEmail, Reply{
				Text: "That doesn't seem like an email address. Please try again...",
			}), nil
		}
		sess.Draft.Email = &text
	}

	return f.commit(ctx, sess, msg, previousEmail)
}

func (f *ConfigFlow) commit(ctx context.Context, sess *Session, msg models.InboundMessage, previousEmail string) (Result, error) {
	email := *sess.Draft.Email
	fields := map[string]interface{}{
		"timezone":   *sess.Draft.Timezone,
		"end_of_day": *sess.Draft.EndOfDay,
		"email":      email,
	}
	if email != previousEmail {
		// A changed address is unverified until its own code round-trips,
		// even if the verification email never goes out.
		fields["email_verified"] = false
		fields["email_verification_code"] = ""
	}
	err := f.meta.Merge(ctx, msg.ChatID, fields)
	if err != nil {
		return end(), err
	}

	var replies []Reply
	verified := false
	if email != "" && email != previousEmail {
		message, err := f.verification.SendCode(ctx, msg.ChatID)
		if err != nil {
			return end(), err
		}
		replies = append(replies, Reply{Text: message})
	} else if email != "" {
		meta, err := f.meta.Get(ctx, msg.ChatID)
		if err == nil && meta != nil {
			verified = meta.EmailVerified
		}
	}

	summary := fmt.Sprintf("All set! Timezone: %d End of day: %d", *sess.Draft.Timezone, *sess.Draft.EndOfDay)
	if email != "" {
		summary += fmt.Sprintf(" Email: %s Verified: %t", email, verified)
	}
	replies = append(replies, Reply{Text: summary})
	return end(replies...), nil
}
