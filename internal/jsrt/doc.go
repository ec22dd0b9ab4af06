// Package jsrt evaluates JavaScript module sources with goja and exposes the
// AMD globals to them: define (with define.amd), require and its requirejs
// alias, and a console that logs through the runtime's logger.
//
// Values cross the boundary as follows. JavaScript objects and functions are
// kept as *goja.Object so that every consumer shares one live object, which
// is what lets circular dependencies observe exports filled in later.
// Primitives are exported to their Go counterparts. Go values coming from
// native or HCL modules are wrapped with goja's ToValue.
package jsrt
