package pipeline

import (
	"fmt"

	"call-insights-go/internal/types"
)

// PrimaryQuestions covers the call itself: topic, summary, whether the
// concern was addressed, and both tones.
func PrimaryQuestions() []string {
	return []string{
		fmt.Sprintf("1. Classify the topic of the text from the following list (choose one): %v", types.Topics),
		"2. Write a long summary of the text, focus on the topic (max 50 words).",
		"3. Was the Client's concern addressed, (choose only one) [Yes, No]?",
		fmt.Sprintf("4. Was the Client tone (choose only one, if not sure choose Neutral) %v? ", types.Tones),
		fmt.Sprintf("5. Was the Call Center Agent tone (choose only one, if not sure choose Neutral) %v?", types.Tones),
	}
}

// SecondaryQuestions covers the agent: upsales and the six 1-5
// performance ratings.
func SecondaryQuestions() []string {
	return []string{
		"1. Did the agent try to upsale the customer (choose only one) [Yes, No]? (sell any additional product or service)",
		"2. If the agent indeed try to upsale the client, did he succeed (choose only one) [Yes, No]? if he didn't try' answer No",
		"3. Rate the agent's level of empathy (The ability to understand and share the feelings of others) on a scale of 1-5.",
		"4. Rate the agent's level of professionalism (Conducting oneself in a way that is appropriate for the workplace) on a scale of 1-5.",
		"5. Rate the agent's level of kindness (The quality of being friendly, generous, and considerate) on a scale of 1-5.",
		"6. Rate the agent's level of effective communication (The ability to convey information clearly and concisely) on a scale of 1-5.",
		"7. Rate the agent's level of active listening (The process of paying attention to and understanding what someone is saying) on a scale of 1-5.",
		"8. Rate the agent's level of customization (The process of tailoring something to the specific needs or preferences of an individual) on a scale of 1-5.",
	}
}
