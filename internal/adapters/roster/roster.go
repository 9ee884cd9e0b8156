// Package roster loads athletes and their growth samples from a YAML file.
//
// Expected layout:
//
//	athletes:
//	  - id: optional, a UUID is assigned when missing
//	    name: Ana
//	    date_of_birth: 2010-04-12
//	    manual_phv_date: 2024-03-01   # optional
//	    samples:
//	      - { date: 2023-03-01, height_cm: 162 }
//
// JSON files parse too, being valid YAML.
package roster

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/vero/internal/domain/calendar"
	"github.com/okian/vero/internal/domain/model"
)

type document struct {
	Athletes []athleteRecord `koanf:"athletes" validate:"dive"`
}

type athleteRecord struct {
	ID            string         `koanf:"id"`
	Name          string         `koanf:"name" validate:"notblank"`
	DateOfBirth   string         `koanf:"date_of_birth" validate:"required,datetime=2006-01-02"`
	ManualPHVDate string         `koanf:"manual_phv_date" validate:"omitempty,datetime=2006-01-02"`
	Samples       []sampleRecord `koanf:"samples" validate:"dive"`
}

type sampleRecord struct {
	Date     string  `koanf:"date" validate:"required,datetime=2006-01-02"`
	HeightCM float64 `koanf:"height_cm" validate:"gt=0"`
}

// Load reads and validates the roster at path. Athletes are returned in file
// order; sample order is preserved.
func Load(ctx context.Context, path string) ([]model.Athlete, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadRoster, path, err)
	}

	var doc document
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.DecodeHookFuncType(timestampToDate),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc()),
			Result:           &doc,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &doc, conf); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoster, path, err)
	}

	v, trans := newValidator()
	if err := v.StructCtx(ctx, doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidRoster, path, describe(verrs, trans))
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoster, path, err)
	}

	out := make([]model.Athlete, 0, len(doc.Athletes))
	seen := make(map[string]bool, len(doc.Athletes))
	for i, rec := range doc.Athletes {
		a, err := rec.toModel()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: athletes[%d]: %w", ErrInvalidRoster, path, i, err)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("%w: %s: athletes[%d]: duplicate id %q", ErrInvalidRoster, path, i, a.ID)
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out, nil
}

// timestampToDate turns YAML timestamps back into text. The parser resolves
// unquoted 2010-04-12 to a time.Time; a timestamp with a clock part keeps it,
// so the date validation rejects it instead of silently truncating.
func timestampToDate(_ reflect.Type, to reflect.Type, data any) (any, error) {
	t, ok := data.(time.Time)
	if !ok || to.Kind() != reflect.String {
		return data, nil
	}
	if t.Equal(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())) {
		return t.Format(time.DateOnly), nil
	}
	return t.Format(time.RFC3339), nil
}

func (r athleteRecord) toModel() (model.Athlete, error) {
	dob, err := calendar.Parse(r.DateOfBirth)
	if err != nil {
		return model.Athlete{}, err
	}

	a := model.Athlete{
		ID:          strings.TrimSpace(r.ID),
		Name:        strings.TrimSpace(r.Name),
		DateOfBirth: dob,
		Samples:     make([]model.GrowthSample, 0, len(r.Samples)),
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	if r.ManualPHVDate != "" {
		d, err := calendar.Parse(r.ManualPHVDate)
		if err != nil {
			return model.Athlete{}, err
		}
		a.ManualPHVDate = &d
	}

	for _, s := range r.Samples {
		d, err := calendar.Parse(s.Date)
		if err != nil {
			return model.Athlete{}, err
		}
		a.Samples = append(a.Samples, model.GrowthSample{Date: d, HeightCM: s.HeightCM})
	}
	return a, nil
}
