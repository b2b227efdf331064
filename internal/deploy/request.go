package deploy

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pineunity/apmec-horizon/internal/apmec"
)

// MaxNameLength is the longest accepted instance name.
const MaxNameLength = 255

// Validation messages shown to the operator.
const (
	msgBothSources     = "Cannot specify both file and direct input."
	msgParamExtension  = "Please upload .yaml file only."
	msgConfigExtension = "Only .yaml file uploads supported"
)

// Upload is a file submitted with a deploy request.
type Upload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (u *Upload) present() bool {
	return u != nil && (u.Filename != "" || u.Content != "")
}

// Request describes one deploy.
type Request struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CatalogID   string  `json:"catalog_id"`
	VIMID       string  `json:"vim_id,omitempty"`
	ParamFile   *Upload `json:"param_file,omitempty"`
	ParamRaw    string  `json:"param_values,omitempty"`
	ConfigFile  *Upload `json:"config_file,omitempty"`
	ConfigRaw   string  `json:"config_values,omitempty"`
}

// ValidationError reports a request the API must not receive.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks the request and returns a *ValidationError for the first
// problem found.
func (r Request) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return invalid("name", "Name is required.")
	}
	if len(name) > MaxNameLength {
		return invalid("name", "Name must be at most %d characters.", MaxNameLength)
	}
	if strings.TrimSpace(r.CatalogID) == "" {
		return invalid("catalog_id", "Catalog is required.")
	}

	if _, err := chooseValues("param_values", r.ParamFile, r.ParamRaw, msgParamExtension); err != nil {
		return err
	}
	if _, err := chooseValues("config", r.ConfigFile, r.ConfigRaw, msgConfigExtension); err != nil {
		return err
	}
	return nil
}

// chooseValues picks the file or raw content and checks it is YAML.
func chooseValues(field string, file *Upload, raw, extensionMsg string) (string, error) {
	if file.present() && raw != "" {
		return "", invalid(field, msgBothSources)
	}

	content := raw
	if file.present() {
		if !strings.HasSuffix(file.Filename, ".yaml") {
			return "", invalid(field, "%s", extensionMsg)
		}
		content = file.Content
	}
	if strings.TrimSpace(content) == "" {
		return "", nil
	}

	var doc any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return "", invalid(field, "Invalid YAML in %s: %v", field, err)
	}
	return content, nil
}

// ParamValues returns the parameter values to send, or "" when none.
func (r Request) ParamValues() string {
	v, _ := chooseValues("param_values", r.ParamFile, r.ParamRaw, msgParamExtension)
	return v
}

// ConfigValues returns the configuration values to send, or "" when none.
func (r Request) ConfigValues() string {
	v, _ := chooseValues("config", r.ConfigFile, r.ConfigRaw, msgConfigExtension)
	return v
}

// Body builds the create request body for kind. The request must be valid.
func (r Request) Body(kind apmec.Kind) (map[string]any, error) {
	if !kind.Deployable() {
		return nil, fmt.Errorf("%s cannot be deployed", kind.Plural())
	}

	attributes := map[string]any{}
	if v := r.ParamValues(); v != "" {
		attributes["param_values"] = v
	}
	if v := r.ConfigValues(); v != "" {
		attributes["config"] = v
	}

	resource := map[string]any{
		kind.CatalogField(): strings.TrimSpace(r.CatalogID),
		"name":              strings.TrimSpace(r.Name),
		"description":       r.Description,
		"attributes":        attributes,
	}
	if r.VIMID != "" {
		resource["vim_id"] = r.VIMID
	}

	return map[string]any{kind.Singular(): resource}, nil
}
