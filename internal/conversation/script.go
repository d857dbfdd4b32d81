package conversation

import (
	"fmt"
	"math/rand"

	"call-insights-go/internal/types"
)

// Words spoken in roughly one minute of a call.
const wordsPerMinute = 240

// Script holds the randomized parameters one dialogue is generated
// from. They double as the ground-truth labels for evaluating the
// analysis stages later.
type Script struct {
	Topic            string `json:"topic"`
	ClientTone       string `json:"client_tone"`
	AgentTone        string `json:"agent_tone"`
	ConcernAddressed bool   `json:"concern_addressed"`
	UpsaleAttempted  bool   `json:"upsale_attempted"`
	UpsaleSuccess    bool   `json:"upsale_success"`

	Empathy                int `json:"empathy"`
	Professionalism        int `json:"professionalism"`
	Kindness               int `json:"kindness"`
	EffectiveCommunication int `json:"effective_communication"`
	ActiveListening        int `json:"active_listening"`
	Customization          int `json:"customization"`
}

func randomScript(rnd *rand.Rand) Script {
	upsale := rnd.Intn(3) // 0 no attempt, 1 attempt fails, 2 attempt succeeds
	return Script{
		Topic:                  types.Topics[rnd.Intn(len(types.Topics))],
		ClientTone:             types.Tones[rnd.Intn(len(types.Tones))],
		AgentTone:              types.Tones[rnd.Intn(len(types.Tones))],
		ConcernAddressed:       rnd.Intn(2) == 0,
		UpsaleAttempted:        upsale > 0,
		UpsaleSuccess:          upsale == 2,
		Empathy:                1 + rnd.Intn(5),
		Professionalism:        1 + rnd.Intn(5),
		Kindness:               1 + rnd.Intn(5),
		EffectiveCommunication: 1 + rnd.Intn(5),
		ActiveListening:        1 + rnd.Intn(5),
		Customization:          1 + rnd.Intn(5),
	}
}

const promptTemplate = "Generate a conversation between an internet provider call center agent named %s " +
	"from (“Iguazio Internet”) and a client named %s with email: %s and phone number: %s " +
	"in %s except 'Agent' and 'Client' prefixes which are constants.\n" +
	"Format the conversation as follow:\n" +
	"Agent: <text here>\n" +
	"Client: <text here>\n" +
	"The conversations has to include at least %d words and no more than %d words.\n" +
	"The call must include the following steps: \n" +
	"1. Opening (greeting and customer details validation and confirmation)\n" +
	"2. Presenting the problem by the customer\n" +
	"3. The agent %s address the client's concern.\n" +
	"4. The Agent %s\n" +
	"5. Summerizing and closing the call\n" +
	"It has to be about a client who is calling to discuss about %s.\n" +
	"Do not add any descriptive tag and do not mark the end of the conversation with [End of conversation].\n" +
	"Use ... for hesitation.\n" +
	"The client needs to have a %s tone.\n" +
	"The agent needs to have a %s.\n" +
	"Remove from the final output any word inside parentheses of all types. \n" +
	"use the following levels of these attributes while describing the agent's role: \n" +
	"Empathy %d, Professionalism %d, Kindness %d, \n" +
	"Effective Communication %d, Active listening %d, Customization %d."

// BuildPrompt renders the generation prompt for one agent/client pair.
func BuildPrompt(agent types.Agent, client types.Client, language string, minWords, maxWords int, s Script) string {
	concern := ""
	if !s.ConcernAddressed {
		concern = "Don't"
	}
	upsale := "Doesn't try to upsale the customer on more services."
	if s.UpsaleAttempted && s.UpsaleSuccess {
		upsale = "Tries to upsale the customer on more services, and succeeds"
	} else if s.UpsaleAttempted {
		upsale = "Tries to upsale the customer on more services, and doesn't succeed"
	}

	return fmt.Sprintf(promptTemplate,
		agent.FirstName+" "+agent.LastName,
		client.FirstName+" "+client.LastName,
		client.Email,
		client.PhoneNumber,
		language,
		minWords,
		maxWords,
		concern,
		upsale,
		s.Topic,
		s.ClientTone,
		s.AgentTone,
		s.Empathy,
		s.Professionalism,
		s.Kindness,
		s.EffectiveCommunication,
		s.ActiveListening,
		s.Customization,
	)
}
