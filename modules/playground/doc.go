// Package playground serves declaratively defined forms over HTTP with live
// validation.
//
// Every visitor gets a session cookie, and each (form, session, language)
// triple owns a live form.Form mounted from a compiled formdef.Definition.
// Live forms idle for longer than the session TTL are dropped.
// Field events arrive as datastar actions; the handler applies the event,
// streams the touched fragment over SSE at once and streams every fragment
// again after pending validations settled. Plain form posts are answered
// with a redirect back to the page.
//
// Routes, relative to the /forms mount point:
//
//	GET    /                                   form index
//	GET    /{form}                             full page
//	POST   /{form}/fields/{field}              change (signal named like the field)
//	POST   /{form}/fields/{field}?via={t}      change from a linked input (signal "{field}_{t}")
//	POST   /{form}/fields/{field}/focus|blur
//	POST   /{form}/arrays/{field}              add an element
//	POST   /{form}/arrays/{field}/{index}      change (signal "{field}_{index}")
//	POST   /{form}/arrays/{field}/{index}/focus|blur
//	DELETE /{form}/arrays/{field}/{index}      remove an element
//	POST   /{form}/submit
//	POST   /{form}/reset
//	GET    /{form}/submissions                 stored submissions as JSON
//
// Router mounts the service together with /metrics and /healthz.
package playground
