// Package submission persists submitted forms in PostgreSQL.
//
// Connect opens a pgx pool with retries and Migrate applies the embedded
// goose migrations. Repository stores sanitized field values as JSONB;
// Handler adapts it to a form submit handler:
//
//	pool, err := submission.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := submission.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//	repo := submission.NewRepository(pool)
//
//	f := form.MustNew("signup",
//	    form.WithOnSubmit(repo.Handler("signup", true)),
//	    form.WithOnSubmitFailed(repo.Handler("signup", false)),
//	)
//
// Values pass through a bluemonday policy before they are stored, so markup
// typed into a field is never persisted.
package submission
