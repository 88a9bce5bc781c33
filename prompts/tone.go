package prompts

import "boardroom/domain"

var toneSuffixes = map[domain.Tone]string{
	domain.ToneFormal:   "\n\n【Speaking Style】Use formal and official expressions. Maintain strict honorifics and use technical terms accurately.",
	domain.ToneBalanced: "\n\n【Speaking Style】Use standard business expressions. Maintain appropriate formality while explaining clearly.",
	domain.ToneCasual:   "\n\n【Speaking Style】Use friendly and casual expressions. Break down technical terms and include analogies.",
	domain.ToneConcise:  "\n\n【Speaking Style】State only the key points concisely. Avoid verbose explanations and utilize bullet points.",
	domain.ToneDetailed: "\n\n【Speaking Style】Provide careful and detailed explanations. Include background and reasoning for thorough explanation.",
}

func ToneSuffix(tone domain.Tone) string {
	if s, ok := toneSuffixes[tone]; ok {
		return s
	}
	return toneSuffixes[domain.ToneBalanced]
}
