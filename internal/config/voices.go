package config

import (
	"fmt"
	"slices"
	"strings"
)

// Polly voices
var PollyVoices = []string{
	"Zeina", "Zhiyu", "Naja", "Mads", "Lotte", "Ruben", "Nicole",
	"Russell", "Amy", "Emma", "Brian", "Aditi", "Raveena", "Ivy",
	"Joanna", "Kendra", "Kimberly", "Salli", "Joey", "Justin",
	"Matthew", "Geraint", "Céline", "Celine", "Léa", "Mathieu",
	"Chantal", "Marlene", "Vicki", "Hans", "Dóra", "Dora",
	"Karl", "Carla", "Bianca", "Giorgio", "Mizuki", "Takumi", "Seoyeon",
	"Liv", "Ewa", "Maja", "Jacek", "Jan", "Camila", "Vitória", "Vitoria",
	"Ricardo", "Inês", "Ines", "Cristiano", "Carmen", "Tatyana", "Maxim",
	"Conchita", "Lucia", "Enrique", "Mia", "Lupe", "Penélope",
	"Penelope", "Miguel", "Astrid", "Filiz", "Gwyneth",
}

// Polly voices available in the neural engine
var PollyNeuralVoices = []string{
	"Amy", "Emma", "Brian", "Ivy", "Joanna", "Kendra",
	"Kimberly", "Salli", "Joey", "Justin", "Kevin", "Matthew",
	"Camila", "Lupe",
}

// Polly voices with the conversational speaking style
var PollyConversationalVoices = []string{"Joanna", "Matthew", "Lupe"}

var OpenAIVoices = []string{
	"alloy", "ash", "ballad", "coral", "echo", "fable",
	"onyx", "nova", "sage", "shimmer", "verse",
}

// voice used when none is configured
func DefaultVoice(engine string) string {
	switch engine {
	case EngineOpenAI:
		return "alloy"
	case EngineGemini:
		return "Kore"
	default:
		return "Joanna"
	}
}

// ValidatePollyVoice checks that voice exists and supports the requested
// engine and style.
func ValidatePollyVoice(voice string, neural, conversational bool) error {
	// Kevin is neural only
	if !contains(PollyVoices, voice) && !(neural && contains(PollyNeuralVoices, voice)) {
		return fmt.Errorf(
			"unsupported voice %s. The available voices are %s",
			voice,
			strings.Join(PollyVoices, ", "),
		)
	}
	if (neural || conversational) && !contains(PollyNeuralVoices, voice) {
		return fmt.Errorf(
			"the voice %s is not available in neural TTS. The available neural voices are %s",
			voice,
			strings.Join(PollyNeuralVoices, ", "),
		)
	}
	if conversational && !contains(PollyConversationalVoices, voice) {
		return fmt.Errorf(
			"the voice %s is not available in conversational style. The available conversational voices are %s",
			voice,
			strings.Join(PollyConversationalVoices, ", "),
		)
	}
	return nil
}

func contains(list []string, s string) bool {
	return slices.Contains(list, s)
}
