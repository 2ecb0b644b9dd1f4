// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AnalogicalQuestion is a paired quiz item: an everyday-life lead-in question
// and a technical concept question that share the same correct option letter,
// so answering the scenario correctly maps onto the technical answer.
type AnalogicalQuestion struct {
	// LeadInQuestion frames an everyday scenario with no proper nouns
	// (a prompt contract, not validated).
	LeadInQuestion string `json:"lead_in_question" yaml:"lead_in_question"`

	// LeadInOptions holds exactly 4 options, each prefixed "A. " through "D. ".
	LeadInOptions []string `json:"lead_in_options" yaml:"lead_in_options"`

	// ConceptExplanation bridges the scenario to the technical concept.
	ConceptExplanation string `json:"concept_explanation" yaml:"concept_explanation"`

	// ConceptQuestion is the technical-content question.
	ConceptQuestion string `json:"concept_question" yaml:"concept_question"`

	// ConceptOptions holds exactly 4 options, same shape as LeadInOptions.
	ConceptOptions []string `json:"concept_options" yaml:"concept_options"`

	// CorrectOption is "A", "B", "C", or "D", and is the correct answer for
	// both option lists.
	CorrectOption string `json:"correct_option" yaml:"correct_option"`

	// Explanation justifies the correct option and the analogy correspondence.
	Explanation string `json:"explanation" yaml:"explanation"`
}
