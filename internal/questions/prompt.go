// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package questions

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/paperplay/pkg/types"
)

// questionPromptTmpl asks the model for a paired analogical question in
// strict JSON: an everyday lead-in whose correct answer sits at the same
// option position as the technical question's.
var questionPromptTmpl = template.Must(template.New("question").Parse(`You are an expert educator who designs analogy-led questions that help learners grasp complex computer science concepts.

Based on the concept information below, produce one complete analogy-led question with two parts:

1. A lead-in question: an everyday-life scenario that mirrors the technical concept, with 4 options.
2. A concept question: after a short bridging explanation, a direct technical question with 4 options.

Hard requirements:
- The lead-in must describe a universal everyday situation. No named people or proper nouns, so every learner can relate.
- The correct answer of both questions must sit at the same option letter (for example both B).
- The two questions must correspond point for point.
- The analogy must be natural, apt, and easy to follow.
- Wrong options must be plausible distractors.

Respond with exactly the following JSON shape and nothing else:

{
  "lead_in_question": "the everyday scenario question",
  "lead_in_options": [
    "A. option text",
    "B. option text",
    "C. option text",
    "D. option text"
  ],
  "concept_explanation": "bridging paragraph connecting the analogy to the technical concept",
  "concept_question": "the technical question",
  "concept_options": [
    "A. option text",
    "B. option text",
    "C. option text",
    "D. option text"
  ],
  "correct_option": "B",
  "explanation": "why the option is correct and how the analogy maps onto the concept"
}

Return only the JSON, nothing else.

Paper title: {{.PaperTitle}}
Concept name: {{.Name}}
Concept explanation: {{.Explanation}}
Importance score: {{.ImportanceScore}}

Generate one analogy-led question for this concept:`))

// renderPrompt executes the question prompt template.
func renderPrompt(paperTitle string, concept types.Concept) (string, error) {
	var buf bytes.Buffer
	err := questionPromptTmpl.Execute(&buf, struct {
		PaperTitle      string
		Name            string
		Explanation     string
		ImportanceScore float64
	}{paperTitle, concept.Name, concept.Explanation, concept.ImportanceScore})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
