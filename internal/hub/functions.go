package hub

import (
	"context"
	"strings"
)

// Canned answers for mock mode, matching the shape the question
// answering function produces for the two question sets.
const (
	mockPrimaryAnswers = "1. billing discrepancies\n" +
		"2. The customer contacted the call center regarding billing discrepancies on her statement. " +
		"The agent acknowledged the issue, assured the customer it would be resolved, and escalated it to the billing department.\n" +
		"3. Yes.\n" +
		"4. Neutral.\n" +
		"5. positive.\n"
	mockSecondaryAnswers = "1. No\n2. No\n3. 4\n4. 5\n5. 4\n6. 5\n7. 4\n8. 3"
)

// SynthesizeAudio turns one dialogue text file into a multi-speaker
// audio file and returns its location.
func (c *Client) SynthesizeAudio(ctx context.Context, textFile string) (string, error) {
	if c.cfg.Mock {
		return strings.TrimSuffix(textFile, ".txt") + ".wav", nil
	}
	return c.run(ctx, c.cfg.TextToAudioURL, map[string]string{
		"textFile": textFile,
		"speakers": "Agent,Client",
	})
}

// Diarize splits one audio file by speaker turn and returns the
// location of the diarization artifact.
func (c *Client) Diarize(ctx context.Context, audioFile string) (string, error) {
	if c.cfg.Mock {
		return audioFile + ".diarization.json", nil
	}
	return c.run(ctx, c.cfg.DiarizeURL, map[string]string{
		"audioFile":     audioFile,
		"speakerLabels": "Agent,Client",
	})
}

// Transcribe produces a transcription file for one audio file, guided
// by its diarization.
func (c *Client) Transcribe(ctx context.Context, audioFile, diarizationFile string) (string, error) {
	if c.cfg.Mock {
		return audioFile + ".transcript.txt", nil
	}
	return c.run(ctx, c.cfg.TranscribeURL, map[string]string{
		"audioFile":       audioFile,
		"diarizationFile": diarizationFile,
	})
}

// Anonymize runs PII recognition over one transcription and returns
// the anonymized file location.
func (c *Client) Anonymize(ctx context.Context, transcriptionFile string) (string, error) {
	if c.cfg.Mock {
		return transcriptionFile + ".anonymized.txt", nil
	}
	return c.run(ctx, c.cfg.AnonymizeURL, map[string]string{
		"textFile": transcriptionFile,
	})
}

// AnswerQuestions asks the question answering function one question
// set about one anonymized transcript and returns the raw answer text.
func (c *Client) AnswerQuestions(ctx context.Context, anonymizedFile string, questions []string) (string, error) {
	if c.cfg.Mock {
		if len(questions) <= 5 {
			return mockPrimaryAnswers, nil
		}
		return mockSecondaryAnswers, nil
	}
	resultURL, err := c.run(ctx, c.cfg.QuestionAnswerURL, map[string]string{
		"textFile":  anonymizedFile,
		"questions": strings.Join(questions, "\n"),
	})
	if err != nil {
		return "", err
	}
	return c.download(ctx, resultURL)
}
