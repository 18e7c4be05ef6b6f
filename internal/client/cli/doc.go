// Package cli is the imagekeeper command-line client.
//
// Commands run one-shot (cli [flags] <command> [args]) or, when no command
// is given, from an interactive prompt. The bearer token obtained by
// "login" is kept in the session directory and sent with later commands.
//
//	register            create an account (an OTP is emailed)
//	verify [email otp]  confirm the registration
//	resend [email]      request a fresh OTP
//	login               authenticate and save the session
//	logout              forget the saved session
//	me                  show the current profile
//	profile [avatar]    change username / email, optionally upload an avatar
//	passwd              change the password
//	upload <file>       upload an image
//	images              list your images
//	show <id>           show one image
//	delete <id>         delete an image
package cli
