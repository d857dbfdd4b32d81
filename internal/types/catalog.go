package types

// Topics a synthetic client may call about. The question-answering
// stage classifies each transcript into one of these.
var Topics = []string{
	"slow internet speed",
	"billing discrepancies",
	"account login problems",
	"setting up a new device",
	"phishing or malware concerns",
	"scheduled maintenance notifications",
	"service upgrades",
	"negotiating pricing",
	"canceling service",
	"customer service feedback",
}

// Tones used both when scripting a conversation and when classifying
// the recorded one.
var Tones = []string{
	"Positive",
	"Neutral",
	"Negative",
}

// UnknownSentinel marks an analysis field that could not be parsed
// out of the model's free-form answer.
const UnknownSentinel = "Unknown"
