// Package health combines the health of several components into one report.
package health

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Check struct {
	Name  string
	Check func(context.Context, bool) (int, string, error)
}

type Dependency struct {
	Resource string `json:"resource"`
	Status   int    `json:"status"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
}

type Report struct {
	Status       int          `json:"status"`
	Dependencies []Dependency `json:"dependencies"`
}

// CheckAll runs every check and returns http.StatusOK only if all of them
// report it without error. The message is the JSON encoded Report.
func CheckAll(ctx context.Context, checkLiveness bool, checks []Check) (int, string, error) {
	report := Report{
		Status:       http.StatusOK,
		Dependencies: make([]Dependency, 0, len(checks)),
	}

	for _, check := range checks {
		status, message, err := check.Check(ctx, checkLiveness)
		if err != nil || status != http.StatusOK {
			report.Status = http.StatusServiceUnavailable
		}

		dep := Dependency{
			Resource: check.Name,
			Status:   status,
			Message:  message,
		}

		if err != nil {
			dep.Error = err.Error()
		}

		report.Dependencies = append(report.Dependencies, dep)
	}

	b, err := json.Marshal(report)
	if err != nil {
		return http.StatusInternalServerError, "", err
	}

	return report.Status, string(b), nil
}
