/*
vaultci builds, monitors and reports on Iris Wallet Vault CI runs.

# Usage

	vaultci monitor start|stop|summary [flags]
	vaultci appimage build [flags]
	vaultci reports generate|preview [flags]

# Monitoring

	vaultci monitor start [--foreground]
	vaultci monitor stop [--wait 10s]
	vaultci monitor summary

	-i, --interval int       sampling interval in seconds (default 5)
	-o, --output string      resource usage log file (default "resource_usage.log")
	-s, --summary string     summary file (default "resource_summary.txt")
	-j, --json string        optional JSON summary file
	    --pidfile string     pid file of the background monitor (default "resource_monitor.pid")
	    --disk-path string   filesystem to report the disk usage of (default "/")

The environment variables MONITOR_INTERVAL, MONITOR_OUTPUT, MONITOR_SUMMARY,
MONITOR_JSON, MONITOR_PIDFILE and MONITOR_DISK_PATH set the defaults.

# AppImage Builds

	vaultci appimage build [flags]

	    --network string             Bitcoin network to build for
	    --app-suffix string          optional application name suffix
	    --output-dir string          directory to copy the final AppImage into (default "/appimage")
	    --recipe string              AppImage builder recipe (default "AppImageBuilder.yml")
	    --builder string             AppImage builder command (default "appimage-builder")
	    --work-dir string            directory with the sources to build from (default ".")
	    --artifact-template string   name template of the final AppImage
	    --in-container string        build inside a container of the specified builder image
	-H, --host string                Docker daemon socket to connect to

The environment variables NETWORK, APP_SUFFIX, OUTPUT_DIR, RECIPE, BUILDER,
WORK_DIR and ARTIFACT_TEMPLATE set the defaults.

# Reports

	vaultci reports generate [-o gh-pages] [--manifest FILE] [--title TITLE]
	vaultci reports preview [-o gh-pages] [--addr localhost:8080]
*/
package main
