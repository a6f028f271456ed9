package serializers

const maxProjectName = 300

type ProjectInput struct {
	Name *string `json:"name"`
}

// ValidateProject returns the trimmed name, or "" when a partial update omits it.
func ValidateProject(in ProjectInput, partial bool) (string, error) {
	errs := FieldErrors{}

	name, _ := text(errs, "name", in.Name, true, partial, maxProjectName)
	return name, errs.Err()
}
