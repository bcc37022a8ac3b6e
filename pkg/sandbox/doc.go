/*
Package sandbox provisions the on-disk tree for one container: a
filesystem overlay layer, a placeholder registry hive layer, and a
runtime environment descriptor, composed into a Runtime that writes
a manifest.json summarizing all three.

None of this performs real OS-level isolation — no process is
executed, no registry hive is actually mounted. Every layer is
bookkeeping: directories and placeholder files that a later,
out-of-scope virtualization backend would consume.

# Layout

	<root>/
	  fs/
	    ProgramFiles/
	    ProgramData/
	    Users/Default/AppData/Local/
	  registry/
	    SOFTWARE.reg  SYSTEM.reg  NTUSER.dat
	  runtime/
	    manifest.json
	  logs/
*/
package sandbox
