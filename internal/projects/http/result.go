package http

// View names understood by the template layer.
const (
	ViewIndex           = "index"
	ViewProjects        = "Project"
	ViewSingleProject   = "SingleProject"
	ViewProjectForm     = "ProjectForm"
	ViewDeletedProjects = "DeletedProjects"
	ViewAssignEmployees = "AssignEmployees"
	ViewSuccess         = "SuccessDisplay"
	ViewError           = "ErrorDisplay"
)

// Attribute names understood by the template layer.
const (
	AttrAllProjects         = "allProjectsList"
	AttrProjectDetails      = "projectDetails"
	AttrDeletedProjects     = "deletedProjects"
	AttrAssignableEmployees = "assignableEmployees"
	AttrProjectID           = "projectID"
	AttrSuccessMessage      = "successMessage"
	AttrErrorMessage        = "errorMessage"
	AttrErrorMsg            = "errorMsg"
	AttrSingleProject       = "singleProject"
	AttrOperation           = "operation"
)

// Kind classifies a Result.
type Kind int

const (
	KindPage Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "page"
	}
}

// Result is what an action produces: the view to render and its attributes.
type Result struct {
	Kind       Kind
	View       string
	Attributes map[string]any
}

// Page renders a view with data attributes.
func Page(view string, attrs map[string]any) Result {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return Result{Kind: KindPage, View: view, Attributes: attrs}
}

// Success renders view with a successMessage.
func Success(view, message string) Result {
	return Result{Kind: KindSuccess, View: view, Attributes: map[string]any{AttrSuccessMessage: message}}
}

// Failure renders view with an errorMessage.
func Failure(view, message string) Result {
	return Result{Kind: KindError, View: view, Attributes: map[string]any{AttrErrorMessage: message}}
}

// Outcome picks the success or error display for a mutation. prefix is a
// validation message placed before the fixed suffix.
func Outcome(ok bool, prefix, successMessage, failureMessage string) Result {
	if ok {
		return Success(ViewSuccess, prefix+successMessage)
	}
	return Failure(ViewError, prefix+failureMessage)
}

// Message returns the success or error message carried by r, if any.
func (r Result) Message() string {
	for _, key := range []string{AttrSuccessMessage, AttrErrorMessage, AttrErrorMsg} {
		if m, ok := r.Attributes[key].(string); ok {
			return m
		}
	}
	return ""
}
