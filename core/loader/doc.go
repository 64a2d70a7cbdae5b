// Package loader mounts features on the Fiber router.
//
// A feature bundles a service with its HTTP handler. The serve command registers the
// 'export' and 'history' features with a Manager, which loads them in registration order:
//
//	mgr := loader.NewManager(log)
//	mgr.Register(export.NewFeature(svc), history.NewFeature(runs, log))
//	if err := mgr.LoadAll(app); err != nil {
//	    return err
//	}
//
// Disabled features are skipped with an info log. A feature whose Load fails, such as a
// history migration error, aborts startup.
package loader
