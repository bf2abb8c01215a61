// Package agon implements the AGON character sheet logic on top of the
// synchronization engine: localized labels, dice-roll query prompts,
// versioned first-time setup of the bonds list, and import of dropped
// bond data.
//
// Everything here is pure data transformation over the session view -
// the package consumes only the exposed engine surface and the
// translation bundle, never the host store directly.
package agon
