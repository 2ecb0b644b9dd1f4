// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concepts

import (
	"bytes"
	"text/template"
)

// extractionPromptTmpl asks the model for exactly five concepts in strict
// JSON, importance descending from 0.95 to 0.75. Responses still arrive
// wrapped in prose often enough that parsing stays multi-strategy.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`You are an expert analyst of academic papers. You must extract the 5 most important core concepts from the paper below.

Strict requirements:
1. Extract the paper's 5 most central technical or theoretical concepts.
2. Keep each explanation between 100 and 200 characters.
3. Explanations must be accessible and suitable for teaching.
4. Order by importance (importance_score descending from 0.95 to 0.75).
5. Concepts must be distinct from one another, no repetition.

Output format:
Respond with exactly the following JSON shape and nothing else. No commentary, no markdown, only JSON:

{
  "concepts": [
    {"name": "concept name 1", "explanation": "detailed explanation covering definition, role, and importance", "importance_score": 0.95},
    {"name": "concept name 2", "explanation": "detailed explanation covering definition, role, and importance", "importance_score": 0.90},
    {"name": "concept name 3", "explanation": "detailed explanation covering definition, role, and importance", "importance_score": 0.85},
    {"name": "concept name 4", "explanation": "detailed explanation covering definition, role, and importance", "importance_score": 0.80},
    {"name": "concept name 5", "explanation": "detailed explanation covering definition, role, and importance", "importance_score": 0.75}
  ]
}

Reminder: return only the JSON, no other text.

Paper title: {{.Title}}

Paper abstract: {{.Abstract}}

Paper body: {{.Content}}

Extract the 5 core concepts, strictly in the JSON format above:`))

// renderPrompt executes the extraction prompt template.
func renderPrompt(title, abstract, content string) (string, error) {
	var buf bytes.Buffer
	err := extractionPromptTmpl.Execute(&buf, struct {
		Title, Abstract, Content string
	}{title, abstract, content})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
