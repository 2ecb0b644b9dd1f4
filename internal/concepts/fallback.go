// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concepts

import "github.com/pdiddy/paperplay/pkg/types"

// Extraction methods recorded in concept file metadata.
const (
	MethodLLM             = "llm"
	MethodFallbackGeneric = "fallback_generic"
	MethodFallbackMinimal = "fallback_minimal"
)

// FallbackConcepts returns the generic machine-learning concept batch used
// when the model's response looks like a failed attempt at the expected
// format. Importance runs 0.95 down to 0.75 like a real batch.
func FallbackConcepts() []types.Concept {
	return []types.Concept{
		{
			Name:            "Neural Network Architecture",
			Explanation:     "A machine learning model patterned after connected neurons, passing information through layered nodes to learn complex patterns and relationships.",
			ImportanceScore: 0.95,
		},
		{
			Name:            "Attention Mechanism",
			Explanation:     "A technique that lets a model focus on the important parts of an input sequence by computing weights that decide which information matters most.",
			ImportanceScore: 0.90,
		},
		{
			Name:            "Deep Learning Optimization",
			Explanation:     "Methods built on deep neural networks that automatically learn hierarchical feature representations, applied across a wide range of AI tasks.",
			ImportanceScore: 0.85,
		},
		{
			Name:            "Model Training Strategy",
			Explanation:     "The techniques used to train machine learning models, including data preprocessing, parameter tuning, and regularization.",
			ImportanceScore: 0.80,
		},
		{
			Name:            "Algorithm Performance Evaluation",
			Explanation:     "Techniques for measuring and improving algorithm performance, efficiency, and accuracy, including metric design and benchmarking.",
			ImportanceScore: 0.75,
		},
	}
}

// MinimalConcepts is the last-resort batch returned when every extraction
// attempt is exhausted. Exactly the minimum valid batch size.
func MinimalConcepts() []types.Concept {
	return []types.Concept{
		{
			Name:            "Artificial Intelligence",
			Explanation:     "The research field spanning machine learning and deep learning, aimed at giving computer systems human-like capabilities.",
			ImportanceScore: 0.85,
		},
		{
			Name:            "Algorithm Design",
			Explanation:     "Techniques for designing and implementing efficient algorithms that solve complex computational and optimization problems.",
			ImportanceScore: 0.80,
		},
		{
			Name:            "Data Processing",
			Explanation:     "Techniques for cleaning, analyzing, and mining large datasets to supply machine learning models with quality training data.",
			ImportanceScore: 0.75,
		},
	}
}
