// Package mcpconfig merges MCP server entries into a host repository's
// .mcp.json. The merge is insert-only: an existing entry under the same name
// is never overwritten, and unrelated top-level keys are preserved.
package mcpconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Server describes how an MCP client launches the sidecar server.
type Server struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// Status is the outcome of a merge attempt.
type Status int

const (
	// Configured means the entry was inserted and the document written.
	Configured Status = iota
	// AlreadyConfigured means an entry with that name already existed;
	// nothing was written.
	AlreadyConfigured
	// WriteFailed means serialization or the disk write failed. The caller
	// should print the descriptor for manual application.
	WriteFailed
)

func (s Status) String() string {
	switch s {
	case Configured:
		return "configured"
	case AlreadyConfigured:
		return "already configured"
	case WriteFailed:
		return "write failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MergeResult carries the merge status plus whether a malformed existing
// document was replaced, so the caller can warn before data is overwritten.
type MergeResult struct {
	Status            Status
	ReplacedMalformed bool
}

// MergeServerEntry inserts server under name in the mcpServers mapping of the
// JSON document at docPath. A missing file yields a fresh document; a
// malformed one yields a fresh document with ReplacedMalformed set. All other
// top-level keys are carried through untouched. The document is written with
// two-space indentation, a trailing newline, and an atomic rename.
func MergeServerEntry(docPath, name string, server Server) (MergeResult, error) {
	doc, replacedMalformed := readDocument(docPath)

	servers := make(map[string]json.RawMessage)
	if raw, ok := doc["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			// mcpServers exists but is not an object; start over.
			servers = make(map[string]json.RawMessage)
			replacedMalformed = true
		}
	}

	if _, exists := servers[name]; exists {
		return MergeResult{Status: AlreadyConfigured, ReplacedMalformed: replacedMalformed}, nil
	}

	entry, err := json.Marshal(server)
	if err != nil {
		return MergeResult{Status: WriteFailed}, fmt.Errorf("failed to serialize server entry: %w", err)
	}
	servers[name] = entry

	serversRaw, err := json.Marshal(servers)
	if err != nil {
		return MergeResult{Status: WriteFailed}, fmt.Errorf("failed to serialize mcpServers: %w", err)
	}
	doc["mcpServers"] = serversRaw

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return MergeResult{Status: WriteFailed}, fmt.Errorf("failed to serialize config: %w", err)
	}
	out = append(out, '\n')

	if err := writeFileAtomic(docPath, out, 0o644); err != nil {
		return MergeResult{Status: WriteFailed}, fmt.Errorf("failed to write %s: %w", docPath, err)
	}
	return MergeResult{Status: Configured, ReplacedMalformed: replacedMalformed}, nil
}

// HasServerEntry reports whether the document at docPath contains an entry
// under name. Missing or malformed documents report false.
func HasServerEntry(docPath, name string) bool {
	doc, _ := readDocument(docPath)
	raw, ok := doc["mcpServers"]
	if !ok {
		return false
	}
	servers := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &servers); err != nil {
		return false
	}
	_, exists := servers[name]
	return exists
}

// RemoveServerEntry deletes the entry under name, preserving everything else.
// Returns true if an entry was removed and the document rewritten.
func RemoveServerEntry(docPath, name string) (bool, error) {
	doc, _ := readDocument(docPath)
	raw, ok := doc["mcpServers"]
	if !ok {
		return false, nil
	}
	servers := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &servers); err != nil {
		return false, nil
	}
	if _, exists := servers[name]; !exists {
		return false, nil
	}
	delete(servers, name)

	serversRaw, err := json.Marshal(servers)
	if err != nil {
		return false, fmt.Errorf("failed to serialize mcpServers: %w", err)
	}
	doc["mcpServers"] = serversRaw

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to serialize config: %w", err)
	}
	out = append(out, '\n')
	if err := writeFileAtomic(docPath, out, 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", docPath, err)
	}
	return true, nil
}

// readDocument reads docPath as a JSON object. Missing files return an empty
// document; malformed content returns an empty document with malformed=true.
func readDocument(docPath string) (doc map[string]json.RawMessage, malformed bool) {
	doc = make(map[string]json.RawMessage)
	data, err := os.ReadFile(docPath)
	if err != nil {
		return doc, false
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return make(map[string]json.RawMessage), true
	}
	return doc, false
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
