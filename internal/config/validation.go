package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/6are8/Plan-Smart/internal/errs"
)

// Validate checks struct tags and the rules tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return errs.NewConfigError("invalid configuration: "+strings.Join(fields, ", "), err)
		}
		return errs.NewConfigError("invalid configuration", err)
	}

	if c.Scheduler.Timezone != "" {
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			return errs.NewConfigError(fmt.Sprintf("invalid scheduler timezone %q", c.Scheduler.Timezone), err)
		}
	}

	for name := range c.Scheduler.Tasks {
		if !slices.Contains(KnownTasks, name) {
			return errs.NewConfigError(fmt.Sprintf("unknown scheduler task %q", name), nil)
		}
	}

	return nil
}

// Location returns the configured scheduler timezone, UTC when unset.
func (c *Config) Location() *time.Location {
	if c.Scheduler.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
