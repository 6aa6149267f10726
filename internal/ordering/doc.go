// Package ordering moves a task to a new rank while keeping the ranks of
// all tasks dense and unique.
//
// A move from rank c to rank t touches only the span between them:
//
//	t > c: ranks c+1..t shift down by one, the task takes t
//	t < c: ranks t..c-1 shift up by one, the task takes t
//
// The complete mapping, the moved task included, is computed first and then
// handed to the store as one batch inside the same transaction that read
// the ranks. There is no intermediate state in which a task holds a
// temporary rank.
package ordering
