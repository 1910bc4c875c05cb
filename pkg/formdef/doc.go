// Package formdef declares forms in YAML and compiles them into validator
// sets and initial values.
//
// A definitions file lists forms with their fields:
//
//	forms:
//	  - name: signup
//	    title: Create an account
//	    fields:
//	      - name: code
//	        label: Invite code
//	        initial: "123"
//	        rules:
//	          - atLeast: {chars: 3}
//	          - atMost: {chars: 7}
//	          - numeric
//	      - name: password
//	        type: password
//	        rules: [required]
//	      - name: confirm
//	        type: password
//	        rules:
//	          - equalTo: {field: password, messages: {different: "Passwords must match"}}
//	    form:
//	      - covalidate: {fields: [confirm]}
//
// A rule is a bare name or a single-key mapping from the rule name to its
// params. Several rules on one field are combined with validation.All.
// Built-in rules mirror the validation package: required, atLeast, atMost,
// numeric, matches, equalTo, exactly, all, any, covalidate and delayed.
// Applications register their own with WithRule.
//
// Custom messages are keyed by message slot and may reference params as
// {name}, for example "At least {chars} characters".
package formdef
