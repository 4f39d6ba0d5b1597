// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bureau-foundation/polyconverter/lib/backup"
	"github.com/bureau-foundation/polyconverter/lib/diaglog"
	"github.com/bureau-foundation/polyconverter/lib/layout"
	"github.com/bureau-foundation/polyconverter/lib/layoutjson"
	"github.com/bureau-foundation/polyconverter/lib/testutil"
)

func newPipeline() *Pipeline {
	return &Pipeline{
		Codec:  layout.Binary{},
		Mapper: layoutjson.Mapper{},
		Guard:  &backup.Guard{Verify: true},
	}
}

type guardFunc func(layoutPath, backupPath string) (backup.Status, error)

func (f guardFunc) Ensure(layoutPath, backupPath string) (backup.Status, error) {
	return f(layoutPath, backupPath)
}

type mapperStub struct {
	document *layout.Document
}

func (m mapperStub) Marshal(*layout.Document) ([]byte, error) { return nil, errors.New("not used") }

func (m mapperStub) Unmarshal([]byte) (*layout.Document, error) { return m.document, nil }

func requireOutcomes(t *testing.T, result Result, want ...diaglog.Category) {
	t.Helper()
	if got := result.Categories(); !reflect.DeepEqual(got, want) {
		t.Fatalf("outcomes = %v (%+v), want %v", got, result.Outcomes, want)
	}
}

func requireMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("%s exists (err=%v), want it absent", filepath.Base(path), err)
	}
}

func sidecarText(t *testing.T, document *layout.Document) []byte {
	t.Helper()
	text, err := layoutjson.Marshal(document)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return text
}

func TestLayoutToJSONCreatesSidecar(t *testing.T) {
	directory := t.TempDir()
	document := testutil.SampleDocument()
	layoutPath := testutil.WriteFile(t, directory, "bridge.layout", testutil.EncodeLayout(t, layout.Binary{}, document))

	result, err := newPipeline().LayoutToJSON(layoutPath)
	if err != nil {
		t.Fatalf("LayoutToJSON: %v", err)
	}
	requireOutcomes(t, result, diaglog.Created)
	if got, want := result.Outcomes[0].Message, `Created "bridge.layout.json"`; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}

	got := testutil.ReadFile(t, filepath.Join(directory, "bridge.layout.json"))
	if want := sidecarText(t, document); !bytes.Equal(got, want) {
		t.Errorf("sidecar contents:\n%s\nwant:\n%s", got, want)
	}
}

func TestLayoutToJSONUndecodableLayout(t *testing.T) {
	directory := t.TempDir()
	layoutPath := testutil.WriteFile(t, directory, "broken.layout", []byte{1, 2, 3})

	result, err := newPipeline().LayoutToJSON(layoutPath)
	if err != nil {
		t.Fatalf("LayoutToJSON: %v", err)
	}
	requireOutcomes(t, result, diaglog.Error)
	if message := result.Outcomes[0].Message; !strings.HasPrefix(message, `Couldn't read layout "broken.layout": `) {
		t.Errorf("message = %q", message)
	}
	requireMissing(t, filepath.Join(directory, "broken.layout.json"))
}

func TestLayoutToJSONNonFiniteFloat(t *testing.T) {
	directory := t.TempDir()
	document := &layout.Document{Records: []layout.Record{layout.Piston{NormalizedValue: float32(math.NaN())}}}
	layoutPath := testutil.WriteFile(t, directory, "nan.layout", testutil.EncodeLayout(t, layout.Binary{}, document))

	result, err := newPipeline().LayoutToJSON(layoutPath)
	if err != nil {
		t.Fatalf("LayoutToJSON: %v", err)
	}
	requireOutcomes(t, result, diaglog.Created)
	sidecar, err := os.ReadFile(filepath.Join(directory, "nan.layout.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(sidecar), `"normalized_value": "NaN"`) {
		t.Errorf("sidecar does not carry NaN as a string:\n%s", sidecar)
	}
}

func TestLayoutToJSONSerializeFailure(t *testing.T) {
	directory := t.TempDir()
	layoutPath := testutil.WriteFile(t, directory, "bridge.layout", testutil.EncodeLayout(t, layout.Binary{}, testutil.SampleDocument()))

	pipeline := newPipeline()
	pipeline.Mapper = mapperStub{}
	result, err := pipeline.LayoutToJSON(layoutPath)
	if err != nil {
		t.Fatalf("LayoutToJSON: %v", err)
	}
	requireOutcomes(t, result, diaglog.Error)
	if message := result.Outcomes[0].Message; !strings.HasPrefix(message, `Failed to serialize "bridge.layout": `) {
		t.Errorf("message = %q", message)
	}
	requireMissing(t, filepath.Join(directory, "bridge.layout.json"))
}

func TestLayoutToJSONSaveFailure(t *testing.T) {
	directory := t.TempDir()
	layoutPath := testutil.WriteFile(t, directory, "bridge.layout", testutil.EncodeLayout(t, layout.Binary{}, testutil.SampleDocument()))
	// A directory where the sidecar should go makes the final rename fail.
	if err := os.Mkdir(filepath.Join(directory, "bridge.layout.json"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	result, err := newPipeline().LayoutToJSON(layoutPath)
	if err != nil {
		t.Fatalf("LayoutToJSON: %v", err)
	}
	requireOutcomes(t, result, diaglog.Error)
	if message := result.Outcomes[0].Message; !strings.HasPrefix(message, `Failed to save file "bridge.layout.json": `) {
		t.Errorf("message = %q", message)
	}
}

func TestLayoutToJSONMissingFile(t *testing.T) {
	_, err := newPipeline().LayoutToJSON(filepath.Join(t.TempDir(), "gone.layout"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LayoutToJSON error = %v, want one wrapping os.ErrNotExist", err)
	}
}

func TestJSONToLayoutCreatesMissingLayout(t *testing.T) {
	directory := t.TempDir()
	document := testutil.SampleDocument()
	sidecarPath := testutil.WriteFile(t, directory, "fresh.layout.json", sidecarText(t, document))

	result, err := newPipeline().JSONToLayout(sidecarPath)
	if err != nil {
		t.Fatalf("JSONToLayout: %v", err)
	}
	requireOutcomes(t, result, diaglog.Created)
	if got, want := result.Outcomes[0].Message, `Converted json file into "fresh.layout"`; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}

	got := testutil.ReadFile(t, filepath.Join(directory, "fresh.layout"))
	if want := testutil.EncodeLayout(t, layout.Binary{}, document); !bytes.Equal(got, want) {
		t.Error("layout bytes do not match the encoded sidecar")
	}
	requireMissing(t, filepath.Join(directory, "fresh.layout.backup"))
}

func TestJSONToLayoutUnchanged(t *testing.T) {
	directory := t.TempDir()
	document := testutil.SampleDocument()
	testutil.WriteFile(t, directory, "bridge.layout", testutil.EncodeLayout(t, layout.Binary{}, document))
	sidecarPath := testutil.WriteFile(t, directory, "bridge.layout.json", sidecarText(t, document))
	before := testutil.Snapshot(t, directory)

	result, err := newPipeline().JSONToLayout(sidecarPath)
	if err != nil {
		t.Fatalf("JSONToLayout: %v", err)
	}
	requireOutcomes(t, result, diaglog.NoChange)
	if result.Outcomes[0].Message != "" {
		t.Errorf("NoChange carries message %q", result.Outcomes[0].Message)
	}
	if after := testutil.Snapshot(t, directory); !reflect.DeepEqual(after, before) {
		t.Errorf("directory changed: before %v, after %v", keys(before), keys(after))
	}
}

func TestJSONToLayoutFirstEditMakesBackup(t *testing.T) {
	directory := t.TempDir()
	original := testutil.SampleDocument()
	originalBytes := testutil.EncodeLayout(t, layout.Binary{}, original)
	testutil.WriteFile(t, directory, "bridge.layout", originalBytes)

	edited := testutil.SampleDocument()
	edited.Budget = 99999
	sidecarPath := testutil.WriteFile(t, directory, "bridge.layout.json", sidecarText(t, edited))

	result, err := newPipeline().JSONToLayout(sidecarPath)
	if err != nil {
		t.Fatalf("JSONToLayout: %v", err)
	}
	requireOutcomes(t, result, diaglog.BackupMade, diaglog.Applied)
	if got, want := result.Outcomes[0].Message, `Made backup "bridge.layout.backup"`; got != want {
		t.Errorf("backup message = %q, want %q", got, want)
	}
	if got, want := result.Outcomes[1].Message, `Applied changes to "bridge.layout"`; got != want {
		t.Errorf("applied message = %q, want %q", got, want)
	}

	if backupBytes := testutil.ReadFile(t, filepath.Join(directory, "bridge.layout.backup")); !bytes.Equal(backupBytes, originalBytes) {
		t.Error("backup does not hold the original layout")
	}
	if got, want := testutil.ReadFile(t, filepath.Join(directory, "bridge.layout")), testutil.EncodeLayout(t, layout.Binary{}, edited); !bytes.Equal(got, want) {
		t.Error("layout does not hold the edited document")
	}
}

func TestJSONToLayoutLaterEditKeepsFirstBackup(t *testing.T) {
	directory := t.TempDir()
	testutil.WriteFile(t, directory, "bridge.layout", testutil.EncodeLayout(t, layout.Binary{}, testutil.SampleDocument()))
	testutil.WriteFile(t, directory, "bridge.layout.backup", []byte("the very first layout"))

	edited := testutil.SampleDocument()
	edited.Theme = "Volcano"
	sidecarPath := testutil.WriteFile(t, directory, "bridge.layout.json", sidecarText(t, edited))

	result, err := newPipeline().JSONToLayout(sidecarPath)
	if err != nil {
		t.Fatalf("JSONToLayout: %v", err)
	}
	requireOutcomes(t, result, diaglog.Applied)
	if got := testutil.ReadFile(t, filepath.Join(directory, "bridge.layout.backup")); string(got) != "the very first layout" {
		t.Errorf("existing backup was replaced with %q", got)
	}
}

func TestJSONToLayoutInvalidJSON(t *testing.T) {
	directory := t.TempDir()
	layoutBytes := testutil.EncodeLayout(t, layout.Binary{}, testutil.SampleDocument())
	testutil.WriteFile(t, directory, "bridge.layout", layoutBytes)
	sidecarPath := testutil.WriteFile(t, directory, "bridge.layout.json", []byte("{\n  \"version\": oops\n}"))
	before := testutil.Snapshot(t, directory)

	result, err := newPipeline().JSONToLayout(sidecarPath)
	if err != nil {
		t.Fatalf("JSONToLayout: %v", err)
	}
	requireOutcomes(t, result, diaglog.Error)
	if message := result.Outcomes[0].Message; !strings.HasPrefix(message, `Invalid json content in "bridge.layout.json": line 2, column `) {
		t.Errorf("message = %q", message)
	}
	if after := testutil.Snapshot(t, directory); !reflect.DeepEqual(after, before) {
		t.Error("directory changed after invalid JSON")
	}
}

func TestJSONToLayoutBackupFailureAborts(t *testing.T) {
	directory := t.TempDir()
	layoutBytes := testutil.EncodeLayout(t, layout.Binary{}, testutil.SampleDocument())
	testutil.WriteFile(t, directory, "bridge.layout", layoutBytes)
	edited := testutil.SampleDocument()
	edited.Version++
	sidecarPath := testutil.WriteFile(t, directory, "bridge.layout.json", sidecarText(t, edited))

	pipeline := newPipeline()
	pipeline.Guard = guardFunc(func(layoutPath, backupPath string) (backup.Status, error) {
		return backup.Skipped, &backup.Error{Path: backupPath, Err: errors.New("disk full")}
	})

	result, err := pipeline.JSONToLayout(sidecarPath)
	if err != nil {
		t.Fatalf("JSONToLayout: %v", err)
	}
	requireOutcomes(t, result, diaglog.Error)
	if got, want := result.Outcomes[0].Message, `Failed to create backup file "bridge.layout.backup": disk full. Conversion aborted.`; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if got := testutil.ReadFile(t, filepath.Join(directory, "bridge.layout")); !bytes.Equal(got, layoutBytes) {
		t.Error("layout was written despite the failed backup")
	}
}

func TestJSONToLayoutGuardCalledOnlyForExistingLayouts(t *testing.T) {
	directory := t.TempDir()
	sidecarPath := testutil.WriteFile(t, directory, "new.layout.json", sidecarText(t, testutil.SampleDocument()))

	pipeline := newPipeline()
	pipeline.Guard = guardFunc(func(string, string) (backup.Status, error) {
		t.Error("Ensure called for a layout that did not exist")
		return backup.Skipped, nil
	})
	if _, err := pipeline.JSONToLayout(sidecarPath); err != nil {
		t.Fatalf("JSONToLayout: %v", err)
	}
}

func TestJSONToLayoutUnexpectedErrors(t *testing.T) {
	t.Run("missing sidecar", func(t *testing.T) {
		if _, err := newPipeline().JSONToLayout(filepath.Join(t.TempDir(), "gone.layout.json")); err == nil {
			t.Fatal("JSONToLayout succeeded for a missing sidecar")
		}
	})

	t.Run("unencodable document", func(t *testing.T) {
		directory := t.TempDir()
		sidecarPath := testutil.WriteFile(t, directory, "odd.layout.json", []byte("{}"))
		pipeline := newPipeline()
		pipeline.Mapper = mapperStub{document: &layout.Document{Records: []layout.Record{layout.Edge{Material: 99}}}}

		if _, err := pipeline.JSONToLayout(sidecarPath); err == nil {
			t.Fatal("JSONToLayout succeeded for a document that cannot be encoded")
		}
		requireMissing(t, filepath.Join(directory, "odd.layout"))
	})

	t.Run("unreadable layout", func(t *testing.T) {
		directory := t.TempDir()
		sidecarPath := testutil.WriteFile(t, directory, "dir.layout.json", sidecarText(t, testutil.SampleDocument()))
		if err := os.Mkdir(filepath.Join(directory, "dir.layout"), 0o755); err != nil {
			t.Fatalf("Mkdir: %v", err)
		}
		if _, err := newPipeline().JSONToLayout(sidecarPath); err == nil {
			t.Fatal("JSONToLayout succeeded when the layout path is a directory")
		}
	})

	t.Run("guard returns a foreign error", func(t *testing.T) {
		directory := t.TempDir()
		testutil.WriteFile(t, directory, "bridge.layout", []byte("old"))
		sidecarPath := testutil.WriteFile(t, directory, "bridge.layout.json", sidecarText(t, testutil.SampleDocument()))
		pipeline := newPipeline()
		pipeline.Guard = guardFunc(func(string, string) (backup.Status, error) {
			return backup.Skipped, errors.New("unexpected")
		})
		if _, err := pipeline.JSONToLayout(sidecarPath); err == nil {
			t.Fatal("JSONToLayout succeeded although the guard failed")
		}
		if got := testutil.ReadFile(t, filepath.Join(directory, "bridge.layout")); string(got) != "old" {
			t.Error("layout was written despite the guard failure")
		}
	})
}

func TestRoundTripThroughBothConversions(t *testing.T) {
	for _, codec := range []layout.Codec{layout.Binary{}, layout.CBOR{}} {
		t.Run(reflect.TypeOf(codec).Name(), func(t *testing.T) {
			directory := t.TempDir()
			original := testutil.EncodeLayout(t, codec, testutil.SampleDocument())
			layoutPath := testutil.WriteFile(t, directory, "bridge.layout", original)

			pipeline := newPipeline()
			pipeline.Codec = codec
			if _, err := pipeline.LayoutToJSON(layoutPath); err != nil {
				t.Fatalf("LayoutToJSON: %v", err)
			}
			result, err := pipeline.JSONToLayout(filepath.Join(directory, "bridge.layout.json"))
			if err != nil {
				t.Fatalf("JSONToLayout: %v", err)
			}
			requireOutcomes(t, result, diaglog.NoChange)
			requireMissing(t, filepath.Join(directory, "bridge.layout.backup"))
		})
	}
}

func keys(snapshot map[string]string) []string {
	var names []string
	for name := range snapshot {
		names = append(names, name)
	}
	return names
}
