package gateway

import (
	"testing"

	"github.com/Keksclan/goRawrSheets/ops"
)

func TestNormalize_ToleratedShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare array", `[{"id":"1"}]`, `[{"id":"1"}]`},
		{"data array", `{"data":[1,2]}`, `[1,2]`},
		{"data items", `{"data":{"items":[3]}}`, `[3]`},
		{"data object", `{"data":{"id":"123","triageStatus":"Classificado"}}`, `{"id":"123","triageStatus":"Classificado"}`},
		{"success with object", `{"success":true,"data":{"total":4}}`, `{"total":4}`},
		{"success with items", `{"success":true,"data":{"items":[5]}}`, `[5]`},
		{"success without data", `{"success":true,"message":"saved"}`, ``},
		{"result", `{"result":{"ok":1}}`, `{"ok":1}`},
		{"items", `{"items":["a"]}`, `["a"]`},
		{"surrounding whitespace", "  \n[1]\n", `[1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Normalize([]byte(tt.body))
			if err != nil {
				t.Fatalf("Normalize(%s): %v", tt.body, err)
			}
			if string(data) != tt.want {
				t.Fatalf("got %s, want %s", data, tt.want)
			}
		})
	}
}

func TestNormalize_RemoteFailures(t *testing.T) {
	tests := []struct {
		body string
		msg  string
	}{
		{`{"success":false,"error":"candidate not found"}`, "candidate not found"},
		{`{"success":false,"message":"sheet locked"}`, "sheet locked"},
		{`{"success":false}`, "remote store reported a failure"},
		{`{"success":false,"error":{"code":7}}`, `{"code":7}`},
		{`{"error":"quota exceeded"}`, "quota exceeded"},
	}
	for _, tt := range tests {
		_, err := Normalize([]byte(tt.body))
		if ops.KindOf(err) != ops.KindRemote {
			t.Fatalf("Normalize(%s): kind %v, want remote", tt.body, ops.KindOf(err))
		}
		if err.Error() != tt.msg {
			t.Fatalf("Normalize(%s): message %q, want %q", tt.body, err.Error(), tt.msg)
		}
	}
}

func TestNormalize_Rejects(t *testing.T) {
	for _, body := range []string{
		``,
		`<html>Service unavailable</html>`,
		`"just a string"`,
		`42`,
		`{}`,
		`{"data":"text"}`,
		`{"items":"nope"}`,
		`{"success":"yes"}`,
		`[1,2`,
	} {
		_, err := Normalize([]byte(body))
		if ops.KindOf(err) != ops.KindNormalization {
			t.Fatalf("Normalize(%q): kind %v, want normalization", body, ops.KindOf(err))
		}
		if err.Error() != errUnexpectedShape {
			t.Fatalf("Normalize(%q) leaked detail: %q", body, err.Error())
		}
	}
}
