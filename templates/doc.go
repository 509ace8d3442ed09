// Package templates manages stored concept templates.
//
// Service saves templates after deriving their focus concept, outline
// relationships and initial description terms from the logical template,
// and loads them back by name. Import reads a directory of JSON template
// files and Watcher re-imports the directory when it changes.
//
// Example:
//
//	svc, err := templates.NewService(repo)
//	if err != nil {
//		return err
//	}
//	n, err := svc.Import(ctx, "./templates")
package templates
