/*
Package game
File: messages.go
Description:
    Player-facing notifications and their translations.

    The engine never builds display strings itself. It picks a message key
    and arguments, and the Messages catalog (gettext .po files embedded from
    locales/) renders them in the configured language.
*/

package game

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/leonelquinteros/gotext"
)

//go:embed locales/*.po
var localeFS embed.FS

// Message keys. Each one has an entry in every locales/*.po file.
const (
	MsgPurchase        = "MSG_PURCHASE"
	MsgGateUnlocked    = "MSG_GATE_UNLOCKED"
	MsgAchievement     = "MSG_ACHIEVEMENT"
	MsgQuestCompleted  = "MSG_QUEST_COMPLETED"
	MsgQuestClaimed    = "MSG_QUEST_CLAIMED"
	MsgAscension       = "MSG_ASCENSION"
	MsgPrestige        = "MSG_PRESTIGE"
	MsgHardReset       = "MSG_HARD_RESET"
	MsgSkillLevel      = "MSG_SKILL_LEVEL"
	MsgSkillsReset     = "MSG_SKILLS_RESET"
	MsgFeatureUnlocked = "MSG_FEATURE_UNLOCKED"
	MsgAutomationOn    = "MSG_AUTOMATION_ON"
	MsgAutomationOff   = "MSG_AUTOMATION_OFF"
	MsgOfflineGain     = "MSG_OFFLINE_GAIN"
	MsgSettingsSaved   = "MSG_SETTINGS_SAVED"
	MsgCatalogReloaded = "MSG_CATALOG_RELOADED"
	MsgSaveCorrupt     = "MSG_SAVE_CORRUPT"
	MsgErrInsufficient = "MSG_ERR_INSUFFICIENT"
	MsgErrPrecondition = "MSG_ERR_PRECONDITION"
	MsgErrUnknown      = "MSG_ERR_UNKNOWN"
	MsgErrPersistence  = "MSG_ERR_PERSISTENCE"
	MsgErrInternal     = "MSG_ERR_INTERNAL"
)

// Messages renders message keys in one language.
type Messages struct {
	locale string
	po     *gotext.Po
}

// LoadMessages loads an embedded locale such as "en" or "fr".
func LoadMessages(locale string) (*Messages, error) {
	data, err := localeFS.ReadFile("locales/" + locale + ".po")
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q", ErrUnknownEntity, locale)
	}
	po := gotext.NewPo()
	po.Parse(data)
	return &Messages{locale: locale, po: po}, nil
}

// Locales lists the embedded languages.
func Locales() []string {
	entries, _ := localeFS.ReadDir("locales")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".po"))
	}
	sort.Strings(out)
	return out
}

func (m *Messages) Locale() string { return m.locale }

// Text renders key with printf-style arguments. Keys missing from the
// catalog fall back to the key itself.
func (m *Messages) Text(key string, args ...interface{}) string {
	if m == nil || m.po == nil {
		if len(args) == 0 {
			return key
		}
		return key + " " + fmt.Sprint(args...)
	}
	return m.po.Get(key, args...)
}

// Severity grades a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is one message pushed to the player.
type Notification struct {
	Severity Severity  `json:"severity"`
	Key      string    `json:"key"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}

// Notifier receives every notification the engine emits. Notify is called
// while the engine lock is held and must not call back into the engine.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(n Notification) {
	level := slog.LevelInfo
	switch n.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	l.Logger.Log(context.Background(), level, n.Message, "key", n.Key, "severity", n.Severity)
}

// Notifiers fans a notification out to several receivers.
type Notifiers []Notifier

func (ns Notifiers) Notify(n Notification) {
	for _, x := range ns {
		x.Notify(n)
	}
}

// errorMessage picks the message key for a failed operation.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientResources):
		return MsgErrInsufficient
	case errors.Is(err, ErrPreconditionNotMet):
		return MsgErrPrecondition
	case errors.Is(err, ErrUnknownEntity):
		return MsgErrUnknown
	case errors.Is(err, ErrPersistence):
		return MsgErrPersistence
	}
	return MsgErrInternal
}
