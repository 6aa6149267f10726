// Package task defines the task record shared by every layer of tarefas.
//
// A task carries a name, a cost, a due date and a rank. Ranks form the
// display order of the list and obey one invariant that every store and
// the ordering engine preserve:
//
//   - The ranks of the N live tasks are exactly {1, ..., N}: no gaps, no
//     duplicates, nothing below 1.
//
// The package also holds the input type (Draft) and its validation, the
// rank batch exchanged between the ordering engine and the stores, and the
// typed error taxonomy (Error, Code) every operation reports through.
package task
