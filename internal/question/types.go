package question

// Difficulty labels how hard a question is expected to be.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// TypeNumerical is the only question type the stores carry: free-form
// answers checked for mathematical equivalence, no option list.
const TypeNumerical = "numerical"

// Question is one quiz question, normalized across the two stores.
// Immutable once fetched.
type Question struct {
	// QuestionID is unique across stores, prefixed with the store it
	// came from, e.g. "OLY_1042" or "CALC_77".
	QuestionID string `json:"question_id"`

	// QuestionType is always TypeNumerical.
	QuestionType string `json:"question_type"`

	Difficulty Difficulty `json:"difficulty"`

	// ConceptTags groups the question by topic, e.g. ["NUMBER_THEORY"].
	// At least one tag; calculus questions carry two.
	ConceptTags []string `json:"concept_tags"`

	QuestionText string `json:"question_text"`

	// CorrectAnswer is the canonical answer string produced by
	// ExtractAnswer from the store's raw payload.
	CorrectAnswer string `json:"correct_answer"`

	// AnswerType is a free-form hint for the judge, e.g. "integer",
	// "float", "expression".
	AnswerType string `json:"answer_type"`

	// Unit is the expected answer unit, often empty.
	Unit string `json:"unit"`

	// Solution is reference text used only to derive difficulty.
	// Empty for calculus questions.
	Solution string `json:"solution,omitempty"`
}
