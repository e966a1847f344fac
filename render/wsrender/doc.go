// Package wsrender implements core.Renderer over a websocket connection.
//
// The renderer keeps a render.Board as its view of what the browser has
// mounted and sends a JSON Command for every visual change. The browser
// answers with Message values: transition_end completes an animate command,
// gesture and continue feed the sequencer, input records the text of the
// active input surface. Any other message type is forwarded on Control so
// that a server can multiplex session commands over the same connection.
//
// Gestures and continue signals are not queued. A gesture counts only while
// a dismissable transition is pending or a caller waits in NextGesture, and
// continue only while a gate announced with await_continue is open. Anything
// else is dropped, so a stray key press never dismisses a later line.
//
//	r := wsrender.New(conn, func(o *wsrender.Options) { o.Logger = logger })
//	go func() { _ = r.Run(ctx) }()
//	sess := eng.Open(r)
package wsrender
