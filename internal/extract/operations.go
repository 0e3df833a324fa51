package extract

type PostProcess string

const (
	PostNone       PostProcess = ""
	PostSplitLines PostProcess = "split-lines"
)

// Input binds one request-body key to a template placeholder. List values are
// joined by the renderer; optional inputs default to empty text.
type Input struct {
	BodyKey  string
	Field    string
	Optional bool
}

// Operation is one named unit of work. Adding an operation is a data change
// here (plus a schema entry when it returns structured output).
type Operation struct {
	Name        string
	Route       string
	Template    string
	SchemaID    string
	Inputs      []Input
	Post        PostProcess
	Memory      bool
	ResponseKey string
}

func DefaultOperations() []Operation {
	return []Operation{
		{
			Name:     "jd_extract",
			Route:    "/api/jd/extract",
			Template: "jd_extract",
			SchemaID: "jd_extract",
			Inputs: []Input{
				{BodyKey: "jdText", Field: "jd_text"},
			},
		},
		{
			Name:     "resume_map",
			Route:    "/api/resume/map",
			Template: "resume_map",
			SchemaID: "resume_map",
			Inputs: []Input{
				{BodyKey: "skills", Field: "jd_skills"},
				{BodyKey: "resumeText", Field: "resume_text"},
			},
		},
		{
			Name:        "outreach",
			Route:       "/api/actions/outreach",
			Template:    "outreach",
			ResponseKey: "text",
			Inputs: []Input{
				{BodyKey: "role", Field: "role"},
				{BodyKey: "company", Field: "company"},
				{BodyKey: "jdSummary", Field: "jd_summary"},
				{BodyKey: "matches", Field: "matches"},
				{BodyKey: "extraContext", Field: "extra_context", Optional: true},
			},
		},
		{
			Name:        "recruiter_questions",
			Route:       "/api/actions/recruiter-questions",
			Template:    "recruiter_questions",
			Post:        PostSplitLines,
			ResponseKey: "questions",
			Inputs: []Input{
				{BodyKey: "jdSummary", Field: "jd_summary"},
				{BodyKey: "skills", Field: "skills"},
			},
		},
		{
			Name:     "tailor_resume",
			Route:    "/api/actions/tailor",
			Template: "tailor_resume",
			SchemaID: "tailor_resume",
			Inputs: []Input{
				{BodyKey: "jdSummary", Field: "jd_summary"},
				{BodyKey: "skills", Field: "skills"},
				{BodyKey: "resumeText", Field: "resume_text"},
				{BodyKey: "extraContext", Field: "extra_context", Optional: true},
			},
		},
		{
			Name:        "cover_letter",
			Route:       "/api/actions/cover-letter",
			Template:    "cover_letter",
			ResponseKey: "text",
			Inputs: []Input{
				{BodyKey: "role", Field: "role"},
				{BodyKey: "company", Field: "company"},
				{BodyKey: "jdSummary", Field: "jd_summary"},
				{BodyKey: "matches", Field: "matches"},
				{BodyKey: "extraContext", Field: "extra_context", Optional: true},
			},
		},
		{
			Name:     "fraud_detection",
			Route:    "/api/jd/detect-fraud",
			Template: "fraud_detection",
			SchemaID: "fraud_detection",
			Inputs: []Input{
				{BodyKey: "jdText", Field: "jd_text"},
			},
		},
		{
			Name:        "chat",
			Route:       "/api/chat",
			Template:    "chat",
			Memory:      true,
			ResponseKey: "text",
			Inputs: []Input{
				{BodyKey: "message", Field: "message"},
			},
		},
	}
}
