package studyplan

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/mathdrill/internal/report"
)

const synthesisSystemPrompt = `You are an expert educational analyst specializing in JEE mathematics preparation.`

const synthesisIntro = `You have been provided with:
1. A detailed performance analysis (Stage 2 report) of a student's quiz attempt
2. The student's written explanations and work for questions they attempted

Your task is to generate a Stage 3 report that:
1. Identifies priority concepts the student needs to work on (based on low accuracy, low confidence, poor work quality)
2. **ANALYZE THE STUDENT'S WORK** to understand their thinking process, identify specific errors, and misconceptions
3. For each priority concept, explain WHY it's important using the signals from the data AND insights from their work
4. Specify concrete improvement aspects (procedural_fluency, conceptual_understanding, visual_intuition, etc.)
5. Create a recommended learning sequence (teach → guided_practice → mixed_practice)
6. Generate video requests with precise scripts for Manim explainer videos that address the SPECIFIC errors you found in their work

**Stage 2 Report:**`

const synthesisInstructions = `**Instructions:**
- Focus on concepts with accuracy < 0.6 OR concept_confidence < 0.5
- Prioritize "high" for concepts with accuracy < 0.4 or where student work shows fundamental misconceptions
- Prioritize "medium" for concepts with accuracy 0.4-0.6
- When student work is available, USE IT to identify SPECIFIC errors and create targeted video content
- For each priority concept, create 2-3 improvement aspects based on observed errors
- Create a realistic learning sequence with time estimates
- For video requests, be VERY specific about what should be shown visually - reference the student's actual errors
- Use the exact schema provided below

**Output Format:**
Generate a valid JSON object matching this exact schema:

`

// planTemplate is the schema skeleton shown to the model, with the
// expected report identifiers filled in.
const planTemplate = `{
  "schema_version": "stage3.v1",
  "report_meta": {
    "report_id": "%s",
    "source_stage2_report_id": "%s",
    "generated_at_iso": "%s",
    "producer": "llm"
  },
  "priority_concepts": [
    {
      "concept_id": "CONCEPT_TAG",
      "priority": "high|medium|low",
      "why_this_concept": {
        "signals": {
          "accuracy": 0.0,
          "concept_confidence": 0.0,
          "work_quality_rating": 0
        },
        "observed_errors": ["Specific error from student work", "Another error pattern"]
      },
      "improve_aspects": [
        {
          "aspect_tag": "procedural_fluency|conceptual_understanding|visual_intuition|problem_identification",
          "goal_statement": "Clear, actionable goal addressing specific student errors"
        }
      ],
      "recommended_sequence": [
        {
          "step_type": "teach|guided_practice|mixed_practice|test",
          "title": "Descriptive title",
          "estimated_minutes": 0
        }
      ]
    }
  ],
  "video_requests": [
    {
      "video_id": "VID_CONCEPTTAG_01",
      "concept_id": "CONCEPT_TAG",
      "video_type": "manim_explainer",
      "duration_sec_target": 360,
      "visual_strategy": "number_line|graph|geometric|algebraic|symbolic",
      "addresses_student_error": "Specific error observed in student's work",
      "precise_script_requirements": {
        "must_include": ["Step 1 addressing student's error", "Step 2", "Step 3"],
        "examples": [
          {"original": "equation", "transform": "solution", "student_mistake": "what they did wrong"}
        ],
        "common_traps_to_address": ["Trap 1 from student work", "Trap 2"]
      },
      "assets": {
        "template_id": "TEMPLATE.TYPE.NAME",
        "manim_parameters": {
          "show_animation": true,
          "highlight_key_step": true,
          "pace": "fast_jee|medium|slow_beginner"
        }
      }
    }
  ]
}`

const synthesisImportant = `**Important:**
- Respond with ONLY valid JSON, no markdown formatting, no explanations
- Do not include ` + "```json or ```" + ` markers
- Ensure all JSON is properly formatted and escaped
- Include at least 1-3 priority concepts
- Create at least 1 video request per priority concept
- USE STUDENT WORK INSIGHTS to make recommendations highly specific and personalized`

// workExcerptLimit caps how much of each question's work is quoted
// into the prompt.
const workExcerptLimit = 500

func buildSynthesisMessage(stage2JSON []byte, workContext, reportID, sourceStage2ID, generatedAtISO string) string {
	var b strings.Builder
	b.WriteString(synthesisIntro)
	b.WriteString("\n```json\n")
	b.Write(stage2JSON)
	b.WriteString("\n```\n")
	b.WriteString(workContext)
	b.WriteString("\n")
	b.WriteString(synthesisInstructions)
	fmt.Fprintf(&b, planTemplate, reportID, sourceStage2ID, generatedAtISO)
	b.WriteString("\n\n")
	b.WriteString(synthesisImportant)
	return b.String()
}

// buildWorkContext renders the student-work section of the prompt:
// one block per question with non-empty combined work, quoting a
// bounded excerpt. Returns the empty string when no work exists.
func buildWorkContext(stage1 *report.Stage1Report) string {
	var b strings.Builder
	for _, q := range stage1.Questions {
		work := q.OptionalWork.CombinedWorkText
		if work == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("\n\n**STUDENT WORK ANALYSIS:**\n")
			b.WriteString("The student provided written explanations/solutions for some questions. Analyze their work to identify:\n")
			b.WriteString("- Conceptual misunderstandings\n")
			b.WriteString("- Procedural errors\n")
			b.WriteString("- Missing knowledge\n")
			b.WriteString("- Areas of confusion\n\n")
		}

		correct := "No"
		if q.Submission.IsCorrect {
			correct = "Yes"
		}
		fmt.Fprintf(&b, "**Question %s** (Concepts: %s)\n", q.QuestionID, strings.Join(q.ConceptTags, ", "))
		fmt.Fprintf(&b, "Correct: %s | Student Answer: %s | Correct Answer: %s\n",
			correct, q.Submission.FinalAnswer, q.Submission.CorrectAnswer)
		fmt.Fprintf(&b, "Student's Work:\n```\n%s\n```\n\n", truncateRunes(work, workExcerptLimit))
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
