// Package review implements the retention workflow that ties concepts,
// memory records, and the scheduling algorithm together. It coordinates
// store operations inside transactions so a review or a newly learned
// concept is persisted atomically.
package review
