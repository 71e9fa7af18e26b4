// Package whitelist holds the participants whose messages may be relayed.
//
// A Registry is built once at startup and is read-only afterwards, so it can
// be shared by any number of goroutines without locking. Changing the list
// requires a restart.
package whitelist

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// MobileNumberLength is the number of digits the normalizer extracts from a
// remote identifier; whitelisted numbers must have the same shape to match.
const MobileNumberLength = 10

var (
	ErrEmptyWhitelist  = errors.New("whitelist has no participants")
	ErrDuplicateNumber = errors.New("duplicate whitelisted mobile number")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Participant struct {
	MobileNumber string `validate:"required,number,len=10"`
	DisplayName  string `validate:"required"`
}

type Registry struct {
	byNumber map[string]Participant
}

// NewRegistry validates every participant and indexes them by mobile number.
// Display names are trimmed; numbers are used verbatim.
func NewRegistry(participants []Participant) (*Registry, error) {
	if len(participants) == 0 {
		return nil, ErrEmptyWhitelist
	}

	cleaned := make([]Participant, 0, len(participants))
	for i, p := range participants {
		p.DisplayName = strings.TrimSpace(p.DisplayName)
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("invalid whitelist entry %d (%q): %s", i, p.MobileNumber, describe(err))
		}
		cleaned = append(cleaned, p)
	}

	if dups := lo.FindDuplicatesBy(cleaned, func(p Participant) string { return p.MobileNumber }); len(dups) > 0 {
		numbers := lo.Map(dups, func(p Participant, _ int) string { return p.MobileNumber })
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNumber, strings.Join(numbers, ", "))
	}

	return &Registry{
		byNumber: lo.KeyBy(cleaned, func(p Participant) string { return p.MobileNumber }),
	}, nil
}

// Lookup is an exact match on the mobile number; no normalization is applied.
func (r *Registry) Lookup(mobileNumber string) (Participant, bool) {
	p, ok := r.byNumber[mobileNumber]
	return p, ok
}

func (r *Registry) Len() int {
	return len(r.byNumber)
}

// Participants returns a copy of the entries ordered by mobile number.
func (r *Registry) Participants() []Participant {
	out := lo.Values(r.byNumber)
	sort.Slice(out, func(i, j int) bool { return out[i].MobileNumber < out[j].MobileNumber })
	return out
}

func describe(err error) string {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "number":
			msgs = append(msgs, fmt.Sprintf("%s must contain digits only", fe.Field()))
		case "len":
			msgs = append(msgs, fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
