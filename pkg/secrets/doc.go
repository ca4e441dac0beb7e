/*
Package secrets resolves credentials referenced from the configuration file.

Database passwords do not have to be written into easybackup.yaml. A value
may instead reference a secret:

	mysql:
	  root_password: ${secret:mysql-root-password}

References are resolved once, when the configuration is loaded, by trying
each provider in order:

  - EnvProvider reads EASYBACKUP_SECRET_MYSQL_ROOT_PASSWORD
  - FileProvider reads <dir>/mysql-root-password, which must be mode 0600
    or 0400

Usage:

	resolver := secrets.NewResolver(
		secrets.NewEnvProvider("EASYBACKUP_SECRET_"),
		fileProvider,
	)
	password, err := resolver.ResolveReferences(ctx, cfg.MySQL.RootPassword)

Secret names are never logged in full and values are never logged.
*/
package secrets
