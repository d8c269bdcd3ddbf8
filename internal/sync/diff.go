package sync

import (
	"sort"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
)

// MovePair is a (new, deleted) pairing reclassified as a single move because
// the new file's content checksum matches a deleted entity's last known
// checksum (spec.md §4.5's move-detection rule).
type MovePair struct {
	OldEntity interfaces.Entity
	New       ScannedFile
}

// Diff is the pure, I/O-free result of comparing a scan against the store's
// recorded file state: new/modified/deleted/moved/unchanged, following
// spec.md §4.5's set-difference definitions on `(file_path, checksum)`.
type Diff struct {
	New       []ScannedFile
	Modified  []ScannedFile
	Deleted   []interfaces.Entity
	Moved     []MovePair
	Unchanged int
}

// ComputeDiff compares the current store contents against a fresh scan.
// Move pairing follows the spec's prescribed deterministic policy: stable
// sort both candidate lists by path, then greedily pair the first unused
// new file sharing a deleted entity's checksum.
func ComputeDiff(storeEntities []interfaces.Entity, scanned []ScannedFile) Diff {
	storeByPath := make(map[string]interfaces.Entity, len(storeEntities))
	for _, e := range storeEntities {
		storeByPath[e.FilePath] = e
	}
	scannedByPath := make(map[string]ScannedFile, len(scanned))
	for _, f := range scanned {
		scannedByPath[f.RelPath] = f
	}

	var newFiles, modifiedFiles []ScannedFile
	unchanged := 0
	for path, f := range scannedByPath {
		e, ok := storeByPath[path]
		switch {
		case !ok:
			newFiles = append(newFiles, f)
		case e.Checksum != f.Checksum:
			modifiedFiles = append(modifiedFiles, f)
		default:
			unchanged++
		}
	}

	var deletedPaths []string
	for path := range storeByPath {
		if _, ok := scannedByPath[path]; !ok {
			deletedPaths = append(deletedPaths, path)
		}
	}

	sort.Slice(newFiles, func(i, j int) bool { return newFiles[i].RelPath < newFiles[j].RelPath })
	sort.Slice(modifiedFiles, func(i, j int) bool { return modifiedFiles[i].RelPath < modifiedFiles[j].RelPath })
	sort.Strings(deletedPaths)

	moves, remainingNew, remainingDeletedPaths := pairMoves(deletedPaths, storeByPath, newFiles)

	deleted := make([]interfaces.Entity, 0, len(remainingDeletedPaths))
	for _, path := range remainingDeletedPaths {
		deleted = append(deleted, storeByPath[path])
	}

	return Diff{
		New:       remainingNew,
		Modified:  modifiedFiles,
		Deleted:   deleted,
		Moved:     moves,
		Unchanged: unchanged,
	}
}

func pairMoves(deletedPaths []string, storeByPath map[string]interfaces.Entity, newFiles []ScannedFile) ([]MovePair, []ScannedFile, []string) {
	usedNew := make(map[int]bool, len(newFiles))
	usedDeleted := make(map[int]bool, len(deletedPaths))
	var moves []MovePair

	for i, path := range deletedPaths {
		entity := storeByPath[path]
		for j, nf := range newFiles {
			if usedNew[j] {
				continue
			}
			if nf.Checksum == entity.Checksum {
				moves = append(moves, MovePair{OldEntity: entity, New: nf})
				usedDeleted[i] = true
				usedNew[j] = true
				break
			}
		}
	}

	remainingNew := make([]ScannedFile, 0, len(newFiles)-len(moves))
	for j, nf := range newFiles {
		if !usedNew[j] {
			remainingNew = append(remainingNew, nf)
		}
	}
	remainingDeleted := make([]string, 0, len(deletedPaths)-len(moves))
	for i, path := range deletedPaths {
		if !usedDeleted[i] {
			remainingDeleted = append(remainingDeleted, path)
		}
	}

	return moves, remainingNew, remainingDeleted
}
