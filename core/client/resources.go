package client

import (
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// Resource is the logical name of a server-side entity type.
type Resource string

const (
	AuthTokens          Resource = "auth_tokens"
	PasswordResetTokens Resource = "password_reset_tokens"
	Teachers            Resource = "teachers"
	Students            Resource = "students"
	Problems            Resource = "problems"
	SampleProblems      Resource = "sample_problems"
	Reports             Resource = "reports"
	Rewards             Resource = "rewards"
	Powerups            Resource = "powerups"
	Skills              Resource = "skills"
)

var uriMap = map[Resource]string{
	AuthTokens:          "/api/v1/auth-tokens",
	PasswordResetTokens: "/api/v1/password-reset-tokens",
	Teachers:            "/api/v1/teachers",
	Students:            "/api/v1/students",
	Problems:            "/api/v1/problems",
	SampleProblems:      "/api/v1/sample-problems",
	Reports:             "/api/v1/reports",
	Rewards:             "/api/v1/rewards",
	Powerups:            "/api/v1/powerups",
	Skills:              "/api/v1/skills",
}

// URIFor builds the URI of a resource: its base path, then `/{id}` and `?query` when given.
// id may be a string or an int; an empty string or a zero int is omitted.
// Asking for an unmapped resource is a defect and panics.
func URIFor(res Resource, id interface{}, query url.Values) string {
	uri, ok := uriMap[res]
	if !ok {
		panic(errors.Errorf("no URI mapping exists for %s", res))
	}
	if seg := idSegment(id); seg != "" {
		uri += "/" + url.PathEscape(seg)
	}
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	return uri
}

func idSegment(id interface{}) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		if v == 0 {
			return ""
		}
		return strconv.Itoa(v)
	default:
		panic(errors.Errorf("unsupported resource id type %T", id))
	}
}
