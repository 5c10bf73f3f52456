package fileutil

import "os"

// OwnerReadWrite is the file permission mode for output files that
// should not be group- or world-readable (owner read/write only).
// Unused by the built-in admin tools today, which only ever append to
// a justfile; reserved for any future write path that needs it.
const OwnerReadWrite os.FileMode = 0o600

// ReadableByAll is the file permission mode _admin_create_task uses
// when it creates a justfile that did not previously exist, matching
// the permissions `just` itself expects a justfile to have.
const ReadableByAll os.FileMode = 0o644
