package auth

import (
	"net/http"
	"testing"

	"github.com/spec-kit/coworking/internal/domain"
	apperrors "github.com/spec-kit/coworking/pkg/util"
)

func TestIdentity_Unwrap(t *testing.T) {
	client := NewClientIdentity(testClient)
	admin := NewAdminIdentity(testAdmin)

	if got, err := client.AsClient(); err != nil || got != testClient {
		t.Fatalf("AsClient: %+v %v", got, err)
	}
	if got, err := admin.AsAdmin(); err != nil || got != testAdmin {
		t.Fatalf("AsAdmin: %+v %v", got, err)
	}
	if client.ID() != testClient.ID || admin.ID() != testAdmin.ID {
		t.Fatalf("ID mismatch")
	}

	_, err := client.AsAdmin()
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != apperrors.CodeIncorrectTokenType || de.HTTPStatus != http.StatusForbidden {
		t.Fatalf("expected incorrect token type, got %v", err)
	}
	if _, err := admin.AsClient(); !apperrors.IsCode(err, apperrors.CodeIncorrectTokenType) {
		t.Fatalf("expected incorrect token type, got %v", err)
	}
}

func TestAccessLevel_Permits(t *testing.T) {
	cases := []struct {
		level AccessLevel
		kind  domain.Label
		want  bool
	}{
		{AccessAny, domain.LabelAdmin, true},
		{AccessAny, domain.LabelClient, true},
		{AccessClientOnly, domain.LabelClient, true},
		{AccessClientOnly, domain.LabelAdmin, false},
		{AccessAdminOnly, domain.LabelAdmin, true},
		{AccessAdminOnly, domain.LabelClient, false},
		{AccessLevel(42), domain.LabelAdmin, false},
	}
	for _, tc := range cases {
		if got := tc.level.Permits(tc.kind); got != tc.want {
			t.Errorf("%s.Permits(%s) = %v, want %v", tc.level, tc.kind, got, tc.want)
		}
	}
}
