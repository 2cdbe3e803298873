// Package object describes the moving entities of a simulation: their
// bodies, hitboxes, and the strategies that steer them.
//
// A Body is plain data. It does not move itself; the loop package advances
// bodies and decides which moves are allowed.
package object
