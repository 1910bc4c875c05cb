// Package logger builds *slog.Logger values through functional options and
// provides attribute helpers that keep key names consistent across formkit.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "formdemo"),
//	    logger.WithContextValue("session_id", sessionKey{}),
//	)
//	log.WarnContext(ctx, "validator failed",
//	    logger.Form("signup"),
//	    logger.Field("email"),
//	    logger.Error(err),
//	)
//
// Error, Errors, Index and Session return an empty slog.Attr for zero input,
// so they can be passed unconditionally. Libraries that accept an optional
// logger use OrDiscard.
package logger
