package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allMessages = []string{
	MsgPurchase, MsgGateUnlocked, MsgAchievement, MsgQuestCompleted, MsgQuestClaimed,
	MsgAscension, MsgPrestige, MsgHardReset, MsgSkillLevel, MsgSkillsReset,
	MsgFeatureUnlocked, MsgAutomationOn, MsgAutomationOff, MsgOfflineGain,
	MsgSettingsSaved, MsgCatalogReloaded, MsgSaveCorrupt, MsgErrInsufficient,
	MsgErrPrecondition, MsgErrUnknown, MsgErrPersistence, MsgErrInternal,
}

func TestMessages_EveryKeyTranslated(t *testing.T) {
	assert.Equal(t, []string{"en", "fr"}, Locales())

	for _, locale := range Locales() {
		m, err := LoadMessages(locale)
		require.NoError(t, err)
		for _, key := range allMessages {
			assert.NotEqual(t, key, m.Text(key), "%s missing from %s", key, locale)
		}
	}
}

func TestMessages_Format(t *testing.T) {
	en, err := LoadMessages("en")
	require.NoError(t, err)
	assert.Equal(t, "Ascension complete! You earned 2 ascension points.", en.Text(MsgAscension, "2"))
	assert.Equal(t, "Bought 19 x Student for 874 points", en.Text(MsgPurchase, int64(19), "Student", "874", CurrencyPoints))

	fr, err := LoadMessages("fr")
	require.NoError(t, err)
	assert.Equal(t, "fr", fr.Locale())
	assert.Contains(t, fr.Text(MsgSkillLevel, "Puissance", 3), "niveau 3")

	_, err = LoadMessages("tlh")
	assert.ErrorIs(t, err, ErrUnknownEntity)

	var none *Messages
	assert.Equal(t, MsgHardReset, none.Text(MsgHardReset))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, MsgErrInsufficient, errorMessage(ErrInsufficientResources))
	assert.Equal(t, MsgErrPrecondition, errorMessage(ErrPreconditionNotMet))
	assert.Equal(t, MsgErrUnknown, errorMessage(ErrUnknownEntity))
	assert.Equal(t, MsgErrPersistence, errorMessage(ErrPersistence))
	assert.Equal(t, MsgErrInternal, errorMessage(assert.AnError))
}
