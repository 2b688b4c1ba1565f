// Package vision analiza la imagen del paciente con un modelo multimodal.
package vision

import "strings"

// SystemPrompt define el tono de la respuesta del "doctor"
const SystemPrompt = `You have to act as a professional doctor, i know you are not but this is for learning purpose.
What's in this image?. Do you find anything wrong with it medically?
If you make a differential, suggest some remedies for them. Donot add any numbers or special characters in
your response. Your response should be in one long paragraph. Also always answer as if you are answering to a real person.
Donot say 'In the image I see' but say 'With what I see, I think you have ....'
Dont respond as an AI model in markdown, your answer should mimic that of an actual doctor not an AI bot,
Keep your answer concise (max 2 sentences). No preamble, start your answer right away please`

// Placeholder se devuelve cuando ningún modelo respondió
const Placeholder = "With what I see, I think you have a skin condition that appears to be some form of dermatitis or irritation. I would recommend applying a topical anti-inflammatory cream and keeping the area clean and dry, but please consult with a healthcare professional for proper diagnosis and treatment if symptoms persist or worsen."

const SourcePlaceholder = "placeholder"

// BuildQuery arma el texto que acompaña a la imagen
func BuildQuery(transcription string) string {
	return SystemPrompt + "\n\nPatient's description: " + strings.TrimSpace(transcription)
}
