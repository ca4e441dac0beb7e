// easybackup backs up a host to local or mounted storage and rotates the
// resulting files through daily, weekly, monthly and yearly tiers.
//
// Each run archives data folders, dumps PostgreSQL and MySQL databases,
// then moves older backups into the retention tiers. Files dropped from
// retention wait in a quarantine folder before they are deleted.
//
// Usage:
//
//	# Write a default configuration
//	easybackup init -c /etc/easybackup.yaml
//
//	# Run a backup
//	easybackup run -c /etc/easybackup.yaml
//
//	# Preview every action without touching anything
//	easybackup run -c /etc/easybackup.yaml --dry-run
//
//	# Rotate existing backups only
//	easybackup rotate
//
//	# Run on a schedule
//	easybackup daemon
package main

func main() {
	Execute()
}
