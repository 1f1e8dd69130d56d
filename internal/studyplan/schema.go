package studyplan

import "github.com/abhisek/mathdrill/internal/llm"

// PlanSchema defines the JSON schema for the synthesized remediation
// plan. Providers constrain generation to it and validate the
// response against it.
var PlanSchema = &llm.Schema{
	Name:        "study-plan",
	Description: "Prioritized remediation plan with video lesson specifications",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"schema_version": map[string]any{
				"type": "string",
				"enum": []any{"stage3.v1"},
			},
			"report_meta": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"report_id":               map[string]any{"type": "string"},
					"source_stage2_report_id": map[string]any{"type": "string"},
					"generated_at_iso":        map[string]any{"type": "string"},
					"producer":                map[string]any{"type": "string"},
				},
				"required":             []any{"report_id", "source_stage2_report_id", "generated_at_iso", "producer"},
				"additionalProperties": false,
			},
			"priority_concepts": map[string]any{
				"type":  "array",
				"items": priorityConceptSchema,
			},
			"video_requests": map[string]any{
				"type":  "array",
				"items": videoRequestSchema,
			},
		},
		"required":             []any{"schema_version", "report_meta", "priority_concepts", "video_requests"},
		"additionalProperties": false,
	},
}

var priorityConceptSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"concept_id": map[string]any{"type": "string"},
		"priority": map[string]any{
			"type": "string",
			"enum": []any{"high", "medium", "low"},
		},
		"why_this_concept": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"signals": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"accuracy":            map[string]any{"type": "number"},
						"concept_confidence":  map[string]any{"type": "number"},
						"work_quality_rating": map[string]any{"type": "integer"},
					},
					"required":             []any{"accuracy", "concept_confidence", "work_quality_rating"},
					"additionalProperties": false,
				},
				"observed_errors": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Specific error patterns seen in the student's work",
				},
			},
			"required":             []any{"signals", "observed_errors"},
			"additionalProperties": false,
		},
		"improve_aspects": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"aspect_tag":     map[string]any{"type": "string"},
					"goal_statement": map[string]any{"type": "string"},
				},
				"required":             []any{"aspect_tag", "goal_statement"},
				"additionalProperties": false,
			},
		},
		"recommended_sequence": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"step_type": map[string]any{
						"type": "string",
						"enum": []any{"teach", "guided_practice", "mixed_practice", "test"},
					},
					"title":             map[string]any{"type": "string"},
					"estimated_minutes": map[string]any{"type": "integer"},
				},
				"required":             []any{"step_type", "title", "estimated_minutes"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"concept_id", "priority", "why_this_concept", "improve_aspects", "recommended_sequence"},
	"additionalProperties": false,
}

var videoRequestSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"video_id":   map[string]any{"type": "string"},
		"concept_id": map[string]any{"type": "string"},
		"video_type": map[string]any{
			"type": "string",
			"enum": []any{"manim_explainer"},
		},
		"duration_sec_target": map[string]any{"type": "integer"},
		"visual_strategy": map[string]any{
			"type": "string",
			"enum": []any{"number_line", "graph", "geometric", "algebraic", "symbolic"},
		},
		"addresses_student_error": map[string]any{
			"type":        "string",
			"description": "The specific error from the student's work this video targets",
		},
		"precise_script_requirements": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"must_include": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"examples": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"original":        map[string]any{"type": "string"},
							"transform":       map[string]any{"type": "string"},
							"student_mistake": map[string]any{"type": "string"},
						},
						"required":             []any{"original", "transform", "student_mistake"},
						"additionalProperties": false,
					},
				},
				"common_traps_to_address": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required":             []any{"must_include", "examples", "common_traps_to_address"},
			"additionalProperties": false,
		},
		"assets": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"template_id": map[string]any{"type": "string"},
				"manim_parameters": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"show_animation":     map[string]any{"type": "boolean"},
						"highlight_key_step": map[string]any{"type": "boolean"},
						"pace": map[string]any{
							"type": "string",
							"enum": []any{"fast_jee", "medium", "slow_beginner"},
						},
					},
					"required":             []any{"show_animation", "highlight_key_step", "pace"},
					"additionalProperties": false,
				},
			},
			"required":             []any{"template_id", "manim_parameters"},
			"additionalProperties": false,
		},
	},
	"required": []any{"video_id", "concept_id", "video_type", "duration_sec_target", "visual_strategy",
		"addresses_student_error", "precise_script_requirements", "assets"},
	"additionalProperties": false,
}
