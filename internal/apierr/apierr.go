package apierr

// FieldError describes one offending field or condition.
type FieldError struct {
	Message    string         `json:"message"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
	Kind       string         `json:"kind"`
	Path       string         `json:"path"`
	Value      any            `json:"value"`
}

// Detail is the "error" member of the envelope.
type Detail struct {
	Name   string                `json:"name"`
	Errors map[string]FieldError `json:"errors"`
}

// Response is the JSON envelope written for every failed request.
type Response struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Error   Detail `json:"error"`
	Stack   string `json:"stack,omitempty"`
}

// Config controls diagnostic output.
type Config struct {
	// ExposeStack adds a formatted stack trace to every response. Enable it
	// in development only.
	ExposeStack bool
}

// Normalizer classifies failures. It holds no mutable state and is safe for
// concurrent use.
type Normalizer struct {
	exposeStack bool
}

// New creates a Normalizer.
func New(cfg Config) *Normalizer {
	return &Normalizer{exposeStack: cfg.ExposeStack}
}

// Classify builds the error envelope for v. input is the decoded request
// body, if any, used to report offending values of validation issues. It
// never panics and never modifies input.
func (n *Normalizer) Classify(v any, input map[string]any) (resp Response) {
	defer func() {
		// A user-defined Error method can panic; degrade to the unknown family.
		if r := recover(); r != nil {
			resp = renderUnknown()
		}
	}()

	vr := classify(v)
	resp = render(vr, input)
	if n.exposeStack {
		resp.Stack = formatStack(stackTrace(vr))
	}
	return resp
}

// ResolveStatus returns the HTTP status for v. It agrees with Classify.
func ResolveStatus(v any) (status int) {
	defer func() {
		if r := recover(); r != nil {
			status = statusOf(unknownVariant{})
		}
	}()

	return statusOf(classify(v))
}

// Family returns the failure family name of v, e.g. "validation" or
// "duplicate_key".
func Family(v any) string {
	return classify(v).family()
}
