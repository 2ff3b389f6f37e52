/*
Package interpolate expands shell-like variable references in strings and in
decoded YAML documents, following the interpolation rules of the Compose
specification. The AppImage build uses it for its artifact name template and
for rendering the builder recipe from the CI environment.

Both the unbraced and the braced syntax are supported:

	$NETWORK
	${NETWORK}

Braced references may carry an operation with an alternative value, which in
turn may contain further references:

	${VAR:-default}   default if VAR is unset or empty
	${VAR-default}    default if VAR is unset
	${VAR:?message}   error with message if VAR is unset or empty
	${VAR?message}    error with message if VAR is unset
	${VAR:+alt}       alt if VAR is set and non-empty, otherwise empty
	${VAR+alt}        alt if VAR is set, otherwise empty

A literal dollar sign is written as “$$”. A dollar sign at the very end of the
input is rejected, and a dollar sign not followed by a name, brace or another
dollar is kept as is.

For instance, the default AppImage artifact name template

	iris-wallet-vault${APP_SUFFIX:+-${APP_SUFFIX}}-${NETWORK}.AppImage

expands to “iris-wallet-vault-regtest.AppImage” when APP_SUFFIX is unset and
NETWORK is “regtest”.
*/
package interpolate
