// Package redisstore keeps form state in Redis and provides Redis-backed
// validators.
//
// Store implements form.Store with WATCH/MULTI optimistic transactions, so a
// form can be driven from several processes. Factory derives per-session
// stores from a Config. Unique is an async validator rejecting values that
// are members of a Redis set; Claim adds a value to such a set.
//
// # Usage
//
//	client, err := redisstore.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	stores := redisstore.NewFactory(client, cfg)
//
//	st, _ := stores.Store("signup", sessionID)
//	f := form.MustNew("signup",
//	    form.WithStore(st),
//	    form.WithValidators(validation.Create(map[string]validation.Constructor{
//	        "username": redisstore.Unique(client, redisstore.UniqueParams{
//	            Set: stores.UniqueSet("signup", "username"),
//	        }),
//	    })),
//	)
package redisstore
