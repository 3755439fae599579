package experts

import "fmt"

// Technique is a prompting strategy applied to the user's question before it
// reaches the model.
type Technique string

const (
	ZeroShot        Technique = "Zero Shot"
	FewShot         Technique = "Few Shot"
	ChainOfThought  Technique = "Chain of Thought"
	SelfConsistency Technique = "Self Consistency"
	TreeOfThoughts  Technique = "Tree of Thoughts"
)

var techniqueDescriptions = map[Technique]string{
	ZeroShot:        "Direct response without examples",
	FewShot:         "Using examples to guide the response",
	ChainOfThought:  "Breaking down the reasoning process step by step",
	SelfConsistency: "Generating multiple paths to verify the answer",
	TreeOfThoughts:  "Exploring multiple reasoning branches systematically",
}

func (t Technique) IsValid() bool {
	_, ok := techniqueDescriptions[t]
	return ok
}

func (t Technique) Description() string {
	return techniqueDescriptions[t]
}

// Apply wraps the user's input in the technique's framing template.
// Unknown techniques fall back to Zero Shot.
func (t Technique) Apply(userInput string) string {
	switch t {
	case FewShot:
		return fmt.Sprintf(`Here are some examples to guide my response:

Example 1: What is dependency injection?
Response: Dependency injection is a design pattern where dependencies are passed into an object rather than created inside. This promotes loose coupling, improves testability, and enhances maintainability.

Example 2: Explain SOLID principles
Response: SOLID is an acronym for five design principles:
- Single Responsibility (a class should have one reason to change)
- Open-Closed (open for extension, closed for modification)
- Liskov Substitution (subtypes must be substitutable for base types)
- Interface Segregation (specific interfaces are better than one general interface)
- Dependency Inversion (depend on abstractions, not concretions)

Question: %s

Response:`, userInput)

	case ChainOfThought:
		return fmt.Sprintf(`I'll approach this question step by step:
1. First, understand the core concept.
2. Then, break down the components.
3. Finally, explain with examples.

Question: %s

Step-by-step solution:`, userInput)

	case SelfConsistency:
		return fmt.Sprintf(`I'll consider multiple approaches to ensure accuracy:

Approach 1:
Approach 2:
Approach 3:

Question: %s

Detailed analysis:`, userInput)

	case TreeOfThoughts:
		return fmt.Sprintf(`I'll explore different branches of reasoning to provide a comprehensive answer:

Branch 1 (Technical Perspective):
Branch 2 (Practical Application):
Branch 3 (Best Practices):

Question: %s

Comprehensive analysis:`, userInput)

	default:
		return fmt.Sprintf(`Question: %s

Response:`, userInput)
	}
}
