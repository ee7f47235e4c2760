// Package coil holds the electromagnetic participants of the launcher: the
// shared winding Geometry value, the Capsule projectile and the
// capacitor-backed acceleration Stage.
//
// Capsule and Stage both embed a Geometry rather than sharing a base type;
// the electromagnetic model only ever needs a geometry and an instantaneous
// current from either of them.
package coil
