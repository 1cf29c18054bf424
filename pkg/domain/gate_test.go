package domain

import "testing"

func seqSigners(statusA, statusB SigningStatus) []Recipient {
	return []Recipient{
		{Email: "a@example.com", Role: RoleSigner, SigningOrder: 1, SigningStatus: statusA},
		{Email: "b@example.com", Role: RoleSigner, SigningOrder: 2, SigningStatus: statusB},
	}
}

func TestGate_AllPriorsSigned_Inactive(t *testing.T) {
	g := EvaluateSigningGate(ModeSequential, seqSigners(StatusSigned, StatusNotSigned), "b@example.com")
	if g.Active {
		t.Fatalf("expected inactive gate, got %+v", g)
	}
}

func TestGate_UnsignedPrior_BlocksWithEmail(t *testing.T) {
	g := EvaluateSigningGate(ModeSequential, seqSigners(StatusNotSigned, StatusNotSigned), "b@example.com")
	if !g.Active {
		t.Fatal("expected active gate")
	}
	if g.BlockingEmail != "a@example.com" {
		t.Fatalf("unexpected blocking email: %q", g.BlockingEmail)
	}
}

func TestGate_FirstSigner_NeverBlocked(t *testing.T) {
	g := EvaluateSigningGate(ModeSequential, seqSigners(StatusNotSigned, StatusNotSigned), "a@example.com")
	if g.Active {
		t.Fatalf("expected inactive gate for first signer, got %+v", g)
	}
}

func TestGate_NonSequentialOrEmpty_Inactive(t *testing.T) {
	if g := EvaluateSigningGate(ModeParallel, seqSigners(StatusNotSigned, StatusNotSigned), "b@example.com"); g.Active {
		t.Fatalf("parallel mode must not gate: %+v", g)
	}
	if g := EvaluateSigningGate("", seqSigners(StatusNotSigned, StatusNotSigned), "b@example.com"); g.Active {
		t.Fatalf("absent mode must not gate: %+v", g)
	}
	if g := EvaluateSigningGate(ModeSequential, nil, "b@example.com"); g.Active {
		t.Fatalf("empty recipient list must not gate: %+v", g)
	}
}

func TestGate_NonSignerRolesNotGated(t *testing.T) {
	rs := []Recipient{
		{Email: "a@example.com", Role: RoleSigner, SigningOrder: 1, SigningStatus: StatusNotSigned},
		{Email: "cc@example.com", Role: RoleCC, SigningOrder: 2, SigningStatus: StatusNotSigned},
	}
	if g := EvaluateSigningGate(ModeSequential, rs, "cc@example.com"); g.Active {
		t.Fatalf("CC must not be gated: %+v", g)
	}
	if g := EvaluateSigningGate(ModeSequential, rs, "stranger@example.com"); g.Active {
		t.Fatalf("unmatched viewer must not be gated: %+v", g)
	}
}

func TestGate_PriorNonSignerRolesIgnored(t *testing.T) {
	rs := []Recipient{
		{Email: "viewer@example.com", Role: RoleViewer, SigningOrder: 1, SigningStatus: StatusNotSigned},
		{Email: "b@example.com", Role: RoleSigner, SigningOrder: 2, SigningStatus: StatusNotSigned},
	}
	if g := EvaluateSigningGate(ModeSequential, rs, "b@example.com"); g.Active {
		t.Fatalf("prior non-signer must not block: %+v", g)
	}
}

func TestGate_ViewerEmailMatchIsTrimmedCaseInsensitive(t *testing.T) {
	g := EvaluateSigningGate(ModeSequential, seqSigners(StatusNotSigned, StatusNotSigned), "  B@Example.COM ")
	if !g.Active || g.BlockingEmail != "a@example.com" {
		t.Fatalf("expected gate for normalized viewer email, got %+v", g)
	}
}

func TestGate_UnsortedInput_PicksFirstUnsignedByOrder(t *testing.T) {
	rs := []Recipient{
		{Email: "c@example.com", Role: RoleSigner, SigningOrder: 3, SigningStatus: StatusNotSigned},
		{Email: "b@example.com", Role: RoleSigner, SigningOrder: 2, SigningStatus: StatusNotSigned},
		{Email: "a@example.com", Role: RoleSigner, SigningOrder: 1, SigningStatus: StatusSigned},
	}
	g := EvaluateSigningGate(ModeSequential, rs, "c@example.com")
	if !g.Active || g.BlockingEmail != "b@example.com" {
		t.Fatalf("expected b@example.com to block, got %+v", g)
	}
}
