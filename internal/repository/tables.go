package repository

// Table names one container (local) or table (remote) and its row shape.
type Table struct {
	Name    string
	Columns []string
	// UpsertKey is the column Upsert matches on. Defaults to "id".
	UpsertKey string
	// OrderBy is used by the remote backing; the local backing keeps insertion order.
	OrderBy string
}

func (t Table) upsertKey() string {
	if t.UpsertKey == "" {
		return "id"
	}
	return t.UpsertKey
}

var (
	SessionsTable = Table{
		Name:    "sessions",
		Columns: []string{"id", "user_id", "created_at"},
		OrderBy: "created_at",
	}
	UsersTable = Table{
		Name: "users",
		Columns: []string{"id", "email", "name", "role", "institution_id", "approved", "password_hash",
			"must_change_password", "course", "level", "class_groups", "category", "department",
			"created_at", "updated_at"},
		OrderBy: "created_at",
	}
	InstitutionsTable = Table{
		Name:    "institutions",
		Columns: []string{"id", "name", "code", "manager_emails", "is_evaluation_open", "evaluation_period_name", "created_at"},
		OrderBy: "created_at",
	}
	SubjectsTable = Table{
		Name: "subjects",
		Columns: []string{"id", "name", "code", "institution_id", "teacher_id", "course", "level",
			"class_group", "shift", "modality", "created_at"},
		OrderBy: "created_at",
	}
	QuestionnairesTable = Table{
		Name:    "questionnaires",
		Columns: []string{"id", "institution_id", "title", "target_role", "questions", "active", "updated_at"},
		OrderBy: "updated_at",
	}
	SelfEvaluationsTable = Table{
		Name: "self_evaluations",
		Columns: []string{"id", "teacher_id", "institution_id", "category", "contract_regime",
			"academic_year", "activities", "updated_at"},
		UpsertKey: "teacher_id",
		OrderBy:   "updated_at",
	}
	QualitativeEvalsTable = Table{
		Name: "qualitative_evals",
		Columns: []string{"id", "teacher_id", "institution_id", "evaluator_id", "punctuality",
			"engagement", "collaboration", "compliance", "comments", "updated_at"},
		UpsertKey: "teacher_id",
		OrderBy:   "updated_at",
	}
	StudentResponsesTable = Table{
		Name: "student_responses",
		Columns: []string{"id", "institution_id", "questionnaire_id", "subject_id", "teacher_id",
			"submitter_id", "answers", "submitted_at"},
		OrderBy: "submitted_at",
	}
	ScoresTable = Table{
		Name: "scores",
		Columns: []string{"id", "teacher_id", "institution_id", "student_score", "self_eval_score",
			"institutional_score", "final_score", "final_grade", "response_count", "last_calculated"},
		UpsertKey: "teacher_id",
		OrderBy:   "final_score DESC",
	}
)
