// SPDX-License-Identifier: Unlicense OR MIT

/*
Package input routes platform pointer events to the elements of a
visual tree.

The [Router] hit-tests pointer events, raises routed events that bubble
from the element under the pointer to the root, tracks enter, leave and
capture state per pointer, forwards events to an [InteractionEngine] and
binds touch contacts to the viewports of a [gioui.org/manip.Manager].
Call [Router.Frame] once per UI tick.
*/
package input
