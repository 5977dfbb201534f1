package form_test

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/Astemirdum/local-library/catalog/internal/form"
	"github.com/Astemirdum/local-library/pkg/validate"
	"github.com/stretchr/testify/require"
)

func authorPipeline() form.Pipeline {
	v := validate.NewCustomValidator()
	return form.Pipeline{
		form.Validate(v,
			form.Field("firstName").Trim().Check("min=1", "First name must be specified.").Escape().
				Check("alphanum", "First name has non-alphanumeric characters."),
			form.Field("dateOfBirth").Optional().Check("iso8601", "Invalid date of birth"),
		),
		form.Check,
	}
}

func TestPipeline_Run(t *testing.T) {
	tests := []struct {
		name       string
		values     url.Values
		wantFields []string
		wantFirst  string
	}{
		{
			name:      "ok",
			values:    url.Values{"firstName": {"  Jim "}, "dateOfBirth": {"1971-12-16"}},
			wantFirst: "Jim",
		},
		{
			name:       "missing first name",
			values:     url.Values{"dateOfBirth": {""}},
			wantFields: []string{"firstName"},
		},
		{
			name:       "markup is escaped before the alphanumeric check",
			values:     url.Values{"firstName": {"<b>"}},
			wantFields: []string{"firstName"},
			wantFirst:  "&lt;b&gt;",
		},
		{
			name:       "bad date",
			values:     url.Values{"firstName": {"Jim"}, "dateOfBirth": {"not-a-date"}},
			wantFields: []string{"dateOfBirth"},
			wantFirst:  "Jim",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sub, err := authorPipeline().Run(tt.values)
			require.Equal(t, tt.wantFirst, sub.Get("firstName"))
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			var vErr *form.ValidationError
			require.True(t, errors.As(err, &vErr))
			fields := make([]string, 0, len(vErr.Fields))
			for _, f := range vErr.Fields {
				fields = append(fields, f.Field)
			}
			require.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestPipeline_FirstErrorPerField(t *testing.T) {
	sub, err := authorPipeline().Run(url.Values{"firstName": {"   "}})
	require.Error(t, err)
	require.Len(t, sub.Errors, 1)
	require.Equal(t, "First name must be specified.", sub.Errors[0].Message)
}

func TestPipeline_StopsOnFirstFailingStep(t *testing.T) {
	errStop := errors.New("stop")
	called := false
	p := form.Pipeline{
		func(*form.Submission) error { return errStop },
		func(*form.Submission) error { called = true; return nil },
	}
	_, err := p.Run(url.Values{})
	require.ErrorIs(t, err, errStop)
	require.False(t, called)
}

func TestMulti(t *testing.T) {
	v := validate.NewCustomValidator()
	p := form.Pipeline{
		form.Multi("genre"),
		form.Validate(v, form.Field("genre").Escape()),
		form.Check,
	}
	tests := []struct {
		name   string
		values url.Values
		want   []string
	}{
		{name: "absent", values: url.Values{}, want: []string{}},
		{name: "scalar", values: url.Values{"genre": {"a"}}, want: []string{"a"}},
		{name: "many", values: url.Values{"genre": {"b", "a", "<c>"}}, want: []string{"b", "a", "&lt;c&gt;"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sub, err := p.Run(tt.values)
			require.NoError(t, err)
			require.Equal(t, tt.want, sub.All("genre"))
		})
	}
}

func TestSubmission_Date(t *testing.T) {
	sub, err := form.Pipeline{}.Run(url.Values{"d": {"2020-02-03"}, "bad": {"x"}})
	require.NoError(t, err)
	require.Equal(t, time.Date(2020, 2, 3, 0, 0, 0, 0, time.UTC), *sub.Date("d"))
	require.Nil(t, sub.Date("bad"))
	require.Nil(t, sub.Date("missing"))
}

func TestEscape(t *testing.T) {
	require.Equal(t, "Tom &amp; Jerry&#x27;s &lt;i&gt;&#x2F;", form.Escape(`Tom & Jerry's <i>/`))
}

func TestRunDoesNotMutateInput(t *testing.T) {
	in := url.Values{"firstName": {" Jim "}}
	_, _ = authorPipeline().Run(in)
	require.Equal(t, " Jim ", in.Get("firstName"))
}
