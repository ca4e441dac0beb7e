package config

import (
	"fmt"
	"os"
)

// DefaultConfigFile is written by "easybackup init". Every feature is
// disabled so that the file has to be revised before the first run.
const DefaultConfigFile = `# easybackup configuration

general:
  # {hostname} is replaced with the local host name
  target_root: /mnt/backup/backups/{hostname}
  target_subfolder: ./daily
  mount_command: "mount.cifs -o user=uXXXXXX,pass=YYYYYYYYYYYYYYYY //uXXXXXX.your-storagebox.de/backup /mnt/backup"
  umount_command: "umount /mnt/backup"

data_folders:
  enabled: false
  include:
    - /etc
    - /home/*/www/
    - /home/*/public/media
  exclude:
    - /home/baduser/public/media

postgresql:
  enabled: false
  root_user: postgres
  vacuumdb: true
  exclude:
    - db_wrong_1
    - db_wrong_2

mysql:
  enabled: false
  root_user: root
  # ${secret:name} reads EASYBACKUP_SECRET_NAME or <secrets.dir>/name
  root_password: ""

rotation:
  enabled: false
  daily: ./daily
  weekly: ./weekly
  monthly: ./monthly
  yearly: ./yearly
  # set to "" to delete discarded files immediately
  quarantine: ./quarantine
  quarantine_max_age: 7
  week_start: monday

notify:
  # {title}, {details} and {mailto} are substituted
  on_success: ""
  on_failure: ""
  mailto: []

history:
  enabled: false
  path: /var/lib/easybackup/history.db

schedule:
  cron: "0 2 * * *"

telemetry:
  logging:
    level: info
    format: text
  metrics:
    enabled: false
    textfile_path: ""

secrets:
  dir: ""
`

// WriteDefault writes DefaultConfigFile to path. It refuses to overwrite an
// existing file.
func WriteDefault(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create configuration file %q: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(DefaultConfigFile); err != nil {
		return fmt.Errorf("failed to write configuration file %q: %w", path, err)
	}
	return nil
}
